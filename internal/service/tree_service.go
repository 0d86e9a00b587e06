package service

import (
	"context"
	"fmt"
	"strings"
)

const (
	treeActivitiesPerHobby = 10
	treeRecentLimit        = 10
	treeActivityScan       = 500
)

// 生命树节点类型
const (
	NodeRoot       = "root"
	NodeHobby      = "hobby"
	NodeActivity   = "activity"
	NodeReflection = "reflection"
	NodeMoment     = "moment"
)

// TreeNode 生命树节点
type TreeNode struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Value    float64        `json:"value,omitempty"`
	Children []TreeNode     `json:"children,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// TreeService 组装生命树：根 → 爱好 → 活动，外加反思与时刻分支
type TreeService struct {
	hobbies     HobbyRepository
	activities  ActivityRepository
	reflections ReflectionRepository
	moments     MomentRepository
}

func NewTreeService(hobbies HobbyRepository, activities ActivityRepository, reflections ReflectionRepository, moments MomentRepository) *TreeService {
	return &TreeService{hobbies: hobbies, activities: activities, reflections: reflections, moments: moments}
}

func (s *TreeService) Build(ctx context.Context, userID string) (*TreeNode, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: 缺少 user_id", ErrValidation)
	}

	hobbies, err := s.hobbies.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	logs, err := s.activities.ListByUser(ctx, userID, treeActivityScan)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	reflections, err := s.reflections.ListRecent(ctx, userID, treeRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	moments, err := s.moments.ListRecent(ctx, userID, treeRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// logs 已按时间倒序，每个爱好只挂最近几条
	byHobby := make(map[string][]TreeNode, len(hobbies))
	for _, l := range logs {
		if len(byHobby[l.HobbyID]) >= treeActivitiesPerHobby {
			continue
		}
		byHobby[l.HobbyID] = append(byHobby[l.HobbyID], TreeNode{
			ID:    l.ID,
			Name:  truncateRunes(firstNonEmpty(l.AISummary, l.Text), 40),
			Type:  NodeActivity,
			Value: float64(l.ExpGained),
			Data:  map[string]any{"created_at": l.CreatedAt, "skills": l.AISkills},
		})
	}

	root := TreeNode{ID: "root_" + userID, Name: "Me", Type: NodeRoot}
	for _, h := range hobbies {
		root.Children = append(root.Children, TreeNode{
			ID:       h.ID,
			Name:     h.Name,
			Type:     NodeHobby,
			Value:    float64(h.Level),
			Children: byHobby[h.ID],
			Data:     map[string]any{"category": h.Category, "exp": h.Exp},
		})
	}

	if len(reflections) > 0 {
		branch := TreeNode{ID: "reflections_" + userID, Name: "Reflections", Type: NodeReflection}
		for _, r := range reflections {
			branch.Children = append(branch.Children, TreeNode{
				ID:    r.ID,
				Name:  firstNonEmpty(r.Emotion, truncateRunes(r.Text, 40)),
				Type:  NodeReflection,
				Value: r.SentimentScore,
			})
		}
		root.Children = append(root.Children, branch)
	}
	if len(moments) > 0 {
		branch := TreeNode{ID: "moments_" + userID, Name: "Happy Moments", Type: NodeMoment}
		for _, m := range moments {
			branch.Children = append(branch.Children, TreeNode{
				ID:    m.ID,
				Name:  firstNonEmpty(truncateRunes(m.Text, 40), m.Emotion),
				Type:  NodeMoment,
				Value: m.SentimentScore,
			})
		}
		root.Children = append(root.Children, branch)
	}
	return &root, nil
}
