package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/yuqie6/reme/internal/ai"
	"github.com/yuqie6/reme/internal/dto"
	"github.com/yuqie6/reme/internal/pkg/buildinfo"
	"github.com/yuqie6/reme/internal/pkg/leveling"
	"github.com/yuqie6/reme/internal/schema"
	"github.com/yuqie6/reme/internal/service"
)

const maxTimelineSize = 500

func (a *apiServer) registerJSONRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", a.getStatus)
	mux.HandleFunc("GET /api/levels", a.getLevels)

	mux.HandleFunc("POST /api/hobbies", a.createHobby)
	mux.HandleFunc("GET /api/hobbies", a.listHobbies)
	mux.HandleFunc("GET /api/hobbies/{id}", a.getHobby)
	mux.HandleFunc("GET /api/hobbies/{id}/activities", a.getTimeline)

	mux.HandleFunc("POST /api/analyze-activity", a.analyzeActivity)
	mux.HandleFunc("POST /api/analyze-reflection", a.analyzeReflection)
	mux.HandleFunc("POST /api/moments", a.createMoment)
	mux.HandleFunc("POST /api/recommend", a.recommend)
	mux.HandleFunc("POST /api/quote", a.quote)

	mux.HandleFunc("POST /api/profile-summary", a.profileSummary)
	mux.HandleFunc("POST /api/recommend-hobbies", a.recommendHobbies)
	mux.HandleFunc("POST /api/companion-chat", a.companionChat)

	mux.HandleFunc("GET /api/users/{id}/characteristics", a.getCharacteristics)
	mux.HandleFunc("GET /api/users/{id}/tree", a.getTree)
	mux.HandleFunc("GET /api/users/{id}/profile", a.getProfile)
	mux.HandleFunc("PUT /api/users/{id}/profile", a.putProfile)
}

func (a *apiServer) getStatus(w http.ResponseWriter, r *http.Request) {
	cfg := a.core.Cfg
	out := dto.StatusDTO{
		App: dto.AppStatusDTO{
			Name:       cfg.App.Name,
			Version:    buildinfo.Version,
			Commit:     buildinfo.Commit,
			StartedAt:  a.startTime.Format(time.RFC3339),
			UptimeSec:  int64(time.Since(a.startTime).Seconds()),
			SafeMode:   a.core.DB.SafeMode,
			ConfigPath: a.cfgPath,
		},
		Storage: dto.StorageStatusDTO{
			DBPath:         cfg.Storage.DBPath,
			MemoryPath:     cfg.Storage.MemoryPath,
			SchemaVersion:  a.core.DB.SchemaVersion,
			SafeModeReason: a.core.DB.MigrationError,
		},
		AI: dto.AIStatusDTO{
			Provider:   cfg.AI.Provider,
			Model:      cfg.AI.Model,
			Configured: a.core.Clients.AI.IsConfigured(),
		},
		Pipeline: dto.PipelineStatusDTO{
			SplitConfidence: cfg.Pipeline.SplitConfidence,
			DepthBonusChars: cfg.Pipeline.DepthBonusChars,
			FragmentWorkers: cfg.Pipeline.FragmentWorkers,
		},
		Memory: dto.MemoryStatusDTO{Documents: a.core.Services.Memory.Count()},
		Scheduler: dto.SchedulerStatusDTO{
			Enabled:   a.sched != nil,
			QuoteCron: cfg.Scheduler.QuoteCron,
		},
		Events: dto.EventsStatusDTO{Subscribers: a.core.Hub.Subscribers()},
	}
	if a.sched != nil {
		if next := a.sched.Next(); !next.IsZero() {
			out.Scheduler.NextRun = next.Format(time.RFC3339)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiServer) getLevels(w http.ResponseWriter, r *http.Request) {
	maxLevel, err := parseIntParam(r.URL.Query().Get("max"), leveling.DefaultTableSize, leveling.MaxLevel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	table, err := leveling.GenerateThresholds(maxLevel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := make([]dto.LevelThresholdDTO, len(table))
	var prev int64
	for i, exp := range table {
		out[i] = dto.LevelThresholdDTO{Level: i + 1, Exp: exp, Delta: exp - prev}
		prev = exp
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiServer) createHobby(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateHobbyRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	res, err := a.core.Services.Hobbies.Create(r.Context(), service.CreateHobbyRequest{
		UserID:         req.UserID,
		Name:           req.Name,
		PastExperience: req.PastExperience,
		InitialLevel:   req.InitialLevel,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CreateHobbyResponseDTO{
		Hobby:      toHobbyDTO(res.Hobby),
		Backfilled: toBriefs(res.Backfilled),
	})
}

func (a *apiServer) listHobbies(w http.ResponseWriter, r *http.Request) {
	items, err := a.core.Services.Hobbies.List(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]dto.HobbyDTO, 0, len(items))
	for _, h := range items {
		out = append(out, toHobbyDTO(h))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiServer) getHobby(w http.ResponseWriter, r *http.Request) {
	h, err := a.core.Services.Hobbies.Get(r.Context(), r.URL.Query().Get("user_id"), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHobbyDTO(*h))
}

func (a *apiServer) getTimeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseIntParam(q.Get("limit"), 50, maxTimelineSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logs, err := a.core.Services.Hobbies.Timeline(r.Context(), q.Get("user_id"), r.PathValue("id"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]dto.ActivityLogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, toActivityLogDTO(l))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiServer) analyzeActivity(w http.ResponseWriter, r *http.Request) {
	var req dto.AnalyzeActivityRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	res, err := a.core.Services.Activities.Submit(r.Context(), service.SubmitActivityRequest{
		HobbyID:    req.HobbyID,
		UserID:     req.UserID,
		Text:       req.Text,
		ImagePath:  req.ImagePath,
		SplitTexts: req.SplitTexts,
		KeepWhole:  req.KeepWhole,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	switch {
	case res.Proposal != nil:
		writeJSON(w, http.StatusOK, dto.SplitProposalDTO{
			ShouldSplit:    true,
			CandidateTexts: res.Proposal.Activities,
			Activities:     res.Proposal.Activities,
			Confidence:     res.Proposal.Confidence,
		})
	case res.Split:
		writeJSON(w, http.StatusOK, dto.SplitResultDTO{
			Split:          true,
			Activities:     toBriefs(res.Activities),
			TotalExpGained: res.TotalExpGained,
			NewLevel:       res.NewLevel,
			TotalExp:       res.TotalExp,
			LeveledUp:      res.LeveledUp(),
		})
	default:
		one := res.Activities[0]
		writeJSON(w, http.StatusOK, dto.ActivityResultDTO{
			Summary:       one.Summary,
			Skills:        nonNilStrings(one.Skills),
			ExpGained:     one.ExpGained,
			NewLevel:      res.NewLevel,
			TotalExp:      res.TotalExp,
			SuggestedNext: nonNilStrings(one.SuggestedNext),
			LeveledUp:     res.LeveledUp(),
		})
	}
}

func (a *apiServer) analyzeReflection(w http.ResponseWriter, r *http.Request) {
	var req dto.ReflectionRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	ref, err := a.core.Services.Reflections.Analyze(r.Context(), req.UserID, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ReflectionDTO{
		ID:             ref.ID,
		AISummary:      ref.AISummary,
		Emotion:        ref.Emotion,
		SentimentScore: ref.SentimentScore,
		CreatedAt:      ref.CreatedAt.UnixMilli(),
	})
}

func (a *apiServer) createMoment(w http.ResponseWriter, r *http.Request) {
	var req dto.MomentRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	m, err := a.core.Services.Reflections.CreateMoment(r.Context(), service.CreateMomentRequest{
		UserID:        req.UserID,
		Text:          req.Text,
		ImagePath:     req.ImagePath,
		ManualEmotion: req.ManualEmotion,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.MomentDTO{
		ID:             m.ID,
		Text:           m.Text,
		ImagePath:      m.ImagePath,
		Emotion:        m.Emotion,
		SentimentScore: m.SentimentScore,
		CreatedAt:      m.CreatedAt.UnixMilli(),
	})
}

func (a *apiServer) recommend(w http.ResponseWriter, r *http.Request) {
	var req dto.RecommendRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	res, err := a.core.Services.Recommend.Recommend(r.Context(), req.UserID, req.Prompt)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RecommendResponseDTO{
		Recommendations:   nonNilStrings(res.Recommendations),
		MotivationalQuote: res.MotivationalQuote,
		MemoriesUsed:      len(res.Memories),
	})
}

func (a *apiServer) quote(w http.ResponseWriter, r *http.Request) {
	var req dto.QuoteRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	q, err := a.core.Services.Quotes.Daily(r.Context(), req.UserID, req.Refresh)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.QuoteDTO{Quote: q.Text, Attribution: q.Attribution, Date: q.Date})
}

func (a *apiServer) profileSummary(w http.ResponseWriter, r *http.Request) {
	var req dto.UserRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	res, err := a.core.Services.Journey.Summary(r.Context(), req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ProfileSummaryDTO{
		Summary: res.Summary,
		Stats:   dto.JourneyStatsDTO(res.Stats),
	})
}

func (a *apiServer) recommendHobbies(w http.ResponseWriter, r *http.Request) {
	var req dto.UserRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	list, err := a.core.Services.Journey.SuggestHobbies(r.Context(), req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := dto.HobbySuggestionsDTO{Recommendations: make([]dto.HobbySuggestionDTO, 0, len(list))}
	for _, sg := range list {
		out.Recommendations = append(out.Recommendations, dto.HobbySuggestionDTO{
			Name:       sg.Name,
			Category:   sg.Category,
			Difficulty: sg.Difficulty,
			Reason:     sg.Reason,
			Benefits:   nonNilStrings(sg.Benefits),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiServer) companionChat(w http.ResponseWriter, r *http.Request) {
	var req dto.CompanionChatRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	history := make([]ai.ChatTurn, len(req.ConversationHistory))
	for i, turn := range req.ConversationHistory {
		history[i] = ai.ChatTurn{Role: turn.Role, Content: turn.Content}
	}
	reply, err := a.core.Services.Journey.Chat(r.Context(), service.CompanionRequest{
		UserID:  req.UserID,
		Message: req.Message,
		History: history,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CompanionChatResponseDTO{Reply: reply})
}

func (a *apiServer) getCharacteristics(w http.ResponseWriter, r *http.Request) {
	c, err := a.core.Services.Characteristics.Analyze(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *apiServer) getTree(w http.ResponseWriter, r *http.Request) {
	tree, err := a.core.Services.Tree.Build(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (a *apiServer) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := a.core.Services.Profiles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

func (a *apiServer) putProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	id := r.PathValue("id")
	if req.ID != "" && strings.TrimSpace(req.ID) != id {
		writeError(w, http.StatusBadRequest, "id 与路径不一致")
		return
	}
	p, err := a.core.Services.Profiles.Upsert(r.Context(), &schema.Profile{
		ID:           id,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		MBTI:         req.MBTI,
		Age:          req.Age,
		ReminderTime: strings.TrimSpace(req.ReminderTime),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}
