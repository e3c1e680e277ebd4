package projects

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

type Service struct {
	repo   Repository
	logger *logging.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// List returns the user's projects with their tasks and progress attached.
func (s *Service) List(ctx context.Context, userID string) ([]Project, error) {
	projects, err := s.repo.ListProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	tasks, err := s.repo.ListTasks(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	byProject := make(map[string][]Task, len(projects))
	for _, t := range tasks {
		byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
	}
	for i := range projects {
		projects[i].Tasks = byProject[projects[i].ID]
		if projects[i].Tasks == nil {
			projects[i].Tasks = []Task{}
		}
		projects[i].Progress = Progress(projects[i].Tasks)
	}
	return projects, nil
}

// Create adds a project, defaulting status and priority.
func (s *Service) Create(ctx context.Context, userID string, p Project) (*Project, error) {
	if err := normalize(&p); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p.ID = uuid.NewString()
	p.UserID = userID
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Tasks = []Task{}
	if err := s.repo.CreateProject(ctx, userID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, p Project) (*Project, error) {
	if err := normalize(&p); err != nil {
		return nil, err
	}
	p.ID = id
	p.UserID = userID
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateProject(ctx, userID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteProject(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", "user_id", userID, "project_id", id)
	return nil
}

func (s *Service) AddTask(ctx context.Context, userID, projectID, title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrBlankTitle
	}
	t := &Task{ID: uuid.NewString(), ProjectID: projectID, Title: title, CreatedAt: s.now().UTC()}
	if err := s.repo.CreateTask(ctx, userID, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ToggleTask(ctx context.Context, userID, id string) (*Task, error) {
	return s.repo.ToggleTask(ctx, userID, id)
}

func (s *Service) DeleteTask(ctx context.Context, userID, id string) error {
	return s.repo.DeleteTask(ctx, userID, id)
}

func normalize(p *Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return ErrBlankName
	}
	p.Status = strings.TrimSpace(p.Status)
	if p.Status == "" {
		p.Status = DefaultStatus
	}
	p.Priority = strings.TrimSpace(p.Priority)
	if p.Priority == "" {
		p.Priority = DefaultPriority
	}
	if !validPriority(p.Priority) {
		return ErrInvalidPriority
	}
	return nil
}
