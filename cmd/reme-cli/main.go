package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yuqie6/reme/internal/ai"
	"github.com/yuqie6/reme/internal/bootstrap"
	"github.com/yuqie6/reme/internal/pkg/buildinfo"
	"github.com/yuqie6/reme/internal/pkg/leveling"
	"github.com/yuqie6/reme/internal/service"
)

var (
	cfgFile string
	userID  string
	core    *bootstrap.Core
)

// 不需要数据库与 AI 的命令
const annotationOffline = "offline"

func main() {
	rootCmd := &cobra.Command{
		Use:     "reme",
		Short:   "RE:ME - 爱好成长记录与经验值系统",
		Long:    `RE:ME 记录你的爱好活动，由 AI 提炼技能并累积经验值与等级。`,
		Version: buildinfo.String(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Annotations[annotationOffline] == "true" {
				return
			}
			var err error
			core, err = bootstrap.NewCore(cfgFile)
			if err != nil {
				slog.Error("初始化失败", "error", err)
				os.Exit(1)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if core != nil {
				_ = core.Close()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "local", "用户 ID")

	rootCmd.AddCommand(levelsCmd())
	rootCmd.AddCommand(hobbyCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(reflectCmd())
	rootCmd.AddCommand(quoteCmd())
	rootCmd.AddCommand(recommendCmd())
	rootCmd.AddCommand(journeyCmd())
	rootCmd.AddCommand(discoverCmd())
	rootCmd.AddCommand(chatCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// levelsCmd 打印等级阈值表
func levelsCmd() *cobra.Command {
	var maxLevel int
	var exp int64

	cmd := &cobra.Command{
		Use:         "levels",
		Short:       "查看等级经验阈值",
		Annotations: map[string]string{annotationOffline: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := leveling.GenerateThresholds(maxLevel)
			if err != nil {
				return err
			}
			fmt.Println("等级  累计经验  本级所需")
			var prev int64
			for i, t := range table {
				fmt.Printf("Lv%-4d %-9d +%d\n", i+1, t, t-prev)
				prev = t
			}
			if cmd.Flags().Changed("exp") {
				p, err := leveling.ProgressOf(exp, nil)
				if err != nil {
					return err
				}
				fmt.Printf("\n%d 经验 → Lv%d（%d/%d，%.0f%%）\n", exp, p.Level, p.CurrentLevelExp, p.NextLevelExp, p.Percent)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxLevel, "max", leveling.DefaultTableSize, "显示到第几级")
	cmd.Flags().Int64Var(&exp, "exp", 0, "换算指定经验值对应的等级")
	return cmd
}

// hobbyCmd 爱好管理
func hobbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hobby",
		Short: "创建 / 查看爱好",
	}

	var past string
	var initial int
	create := &cobra.Command{
		Use:   "create <名称>",
		Short: "创建爱好（AI 自动归类）",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.RequireAIConfigured(); err != nil {
				return err
			}
			res, err := core.Services.Hobbies.Create(cmd.Context(), service.CreateHobbyRequest{
				UserID:         userID,
				Name:           strings.Join(args, " "),
				PastExperience: past,
				InitialLevel:   initial,
			})
			if err != nil {
				return err
			}
			h := res.Hobby
			fmt.Printf("✅ 已创建 %s [%s]\n", h.Name, h.Category)
			fmt.Printf("   ID: %s\n", h.ID)
			if h.Description != "" {
				fmt.Printf("   %s\n", h.Description)
			}
			printProgress(h.Progress)
			if len(res.Backfilled) > 0 {
				fmt.Printf("   已导入 %d 条过往经历\n", len(res.Backfilled))
			}
			return nil
		},
	}
	create.Flags().StringVar(&past, "past", "", "过往经历（不计经验）")
	create.Flags().IntVar(&initial, "level", 0, "初始等级")

	list := &cobra.Command{
		Use:   "list",
		Short: "列出爱好",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := core.Services.Hobbies.List(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("📚 还没有爱好，先用 'reme hobby create <名称>' 创建一个")
				return nil
			}
			for _, h := range items {
				fmt.Printf("• %s [%s]  %s\n", h.Name, h.Category, h.ID)
				printProgress(h.Progress)
			}
			return nil
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

// logCmd 记录活动
func logCmd() *cobra.Command {
	var hobbyID string
	var image string
	var splits []string
	var keepWhole bool

	cmd := &cobra.Command{
		Use:   "log <活动描述>",
		Short: "记录一次爱好活动并获得经验",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.RequireAIConfigured(); err != nil {
				return err
			}
			res, err := core.Services.Activities.Submit(cmd.Context(), service.SubmitActivityRequest{
				HobbyID:    hobbyID,
				UserID:     userID,
				Text:       strings.Join(args, " "),
				ImagePath:  image,
				SplitTexts: splits,
				KeepWhole:  keepWhole,
			})
			if err != nil {
				return err
			}
			if res.Proposal != nil {
				fmt.Printf("🤔 这条记录似乎包含 %d 项活动（置信度 %.2f）：\n", len(res.Proposal.Activities), res.Proposal.Confidence)
				for _, a := range res.Proposal.Activities {
					fmt.Printf("  • %s\n", a)
				}
				fmt.Println("   确认拆分：对每项加 --split \"…\" 重新提交；保持整体：加 --keep-whole")
				return nil
			}
			for _, a := range res.Activities {
				fmt.Printf("📝 %s  (+%d EXP)\n", a.Summary, a.ExpGained)
				if len(a.Skills) > 0 {
					fmt.Printf("   技能: %s\n", strings.Join(a.Skills, ", "))
				}
				for _, next := range a.SuggestedNext {
					fmt.Printf("   → %s\n", next)
				}
			}
			fmt.Printf("\n共获得 %d EXP，累计 %d，Lv%d\n", res.TotalExpGained, res.TotalExp, res.NewLevel)
			if res.LeveledUp() {
				fmt.Printf("🎉 升级！Lv%d → Lv%d\n", res.PrevLevel, res.NewLevel)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&hobbyID, "hobby", "", "爱好 ID")
	cmd.Flags().StringVar(&image, "image", "", "图片路径")
	cmd.Flags().StringArrayVar(&splits, "split", nil, "确认后的拆分片段，可重复")
	cmd.Flags().BoolVar(&keepWhole, "keep-whole", false, "不做拆分检查")
	_ = cmd.MarkFlagRequired("hobby")
	return cmd
}

// reflectCmd 写反思
func reflectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reflect <内容>",
		Short: "记录一段反思并分析情绪",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.RequireAIConfigured(); err != nil {
				return err
			}
			ref, err := core.Services.Reflections.Analyze(cmd.Context(), userID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Printf("💭 %s\n", ref.AISummary)
			fmt.Printf("   情绪: %s（%.2f）\n", ref.Emotion, ref.SentimentScore)
			return nil
		},
	}
}

// quoteCmd 今日语录
func quoteCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "获取今日语录",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.RequireAIConfigured(); err != nil {
				return err
			}
			q, err := core.Services.Quotes.Daily(cmd.Context(), userID, refresh)
			if err != nil {
				return err
			}
			fmt.Printf("“%s”\n", q.Text)
			if q.Attribution != "" {
				fmt.Printf("    - %s\n", q.Attribution)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "忽略缓存重新生成")
	return cmd
}

// recommendCmd 成长建议
func recommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend [问题]",
		Short: "基于历史记录给出建议",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.RequireAIConfigured(); err != nil {
				return err
			}
			res, err := core.Services.Recommend.Recommend(cmd.Context(), userID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(res.Memories) > 0 {
				fmt.Printf("🔍 参考了 %d 条相关记录\n\n", len(res.Memories))
			}
			for i, r := range res.Recommendations {
				fmt.Printf("%d. %s\n", i+1, r)
			}
			if res.MotivationalQuote != "" {
				fmt.Printf("\n💪 %s\n", res.MotivationalQuote)
			}
			return nil
		},
	}
}

// journeyCmd 成长旅程总结
func journeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "journey",
		Short: "生成成长旅程总结",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.RequireAIConfigured(); err != nil {
				return err
			}
			res, err := core.Services.Journey.Summary(cmd.Context(), userID)
			if err != nil {
				return err
			}
			st := res.Stats
			fmt.Printf("📊 %d 个爱好 · %d 条活动 · 总等级 %d · %d EXP\n\n", st.TotalHobbies, st.TotalActivities, st.TotalLevel, st.TotalExp)
			fmt.Println(res.Summary)
			return nil
		},
	}
}

// discoverCmd 推荐新爱好
func discoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "根据画像推荐新爱好",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.RequireAIConfigured(); err != nil {
				return err
			}
			list, err := core.Services.Journey.SuggestHobbies(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("暂无新的推荐")
				return nil
			}
			for i, sg := range list {
				fmt.Printf("%d. %s [%s · %s]\n", i+1, sg.Name, sg.Category, sg.Difficulty)
				if sg.Reason != "" {
					fmt.Printf("   %s\n", sg.Reason)
				}
				if len(sg.Benefits) > 0 {
					fmt.Printf("   ✨ %s\n", strings.Join(sg.Benefits, " / "))
				}
			}
			return nil
		},
	}
}

// chatCmd 交互式陪伴对话；空行或 /exit 退出
func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "与陪伴助手对话",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.RequireAIConfigured(); err != nil {
				return err
			}
			var history []ai.ChatTurn
			in := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !in.Scan() {
					return in.Err()
				}
				msg := strings.TrimSpace(in.Text())
				if msg == "" || msg == "/exit" {
					return nil
				}
				reply, err := core.Services.Journey.Chat(cmd.Context(), service.CompanionRequest{UserID: userID, Message: msg, History: history})
				if err != nil {
					return err
				}
				fmt.Printf("\n%s\n\n", reply)
				history = append(history, ai.ChatTurn{Role: "user", Content: msg}, ai.ChatTurn{Role: "assistant", Content: reply})
			}
		},
	}
}

func printProgress(p leveling.Progress) {
	fmt.Printf("   Lv%d  %d/%d EXP (%.0f%%)\n", p.Level, p.CurrentLevelExp, p.NextLevelExp, p.Percent)
}
