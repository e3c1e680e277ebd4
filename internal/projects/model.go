package projects

import (
	"errors"
	"math"
	"time"
)

const (
	DefaultStatus   = "In Progress"
	DefaultPriority = "Medium"
)

var (
	ErrBlankName       = errors.New("projects: name is required")
	ErrBlankTitle      = errors.New("projects: task title is required")
	ErrInvalidPriority = errors.New("projects: priority must be High, Medium or Low")
	ErrProjectNotFound = errors.New("projects: project not found")
	ErrTaskNotFound    = errors.New("projects: task not found")
)

type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Tasks     []Task    `json:"tasks"`
	Progress  int       `json:"progress"`
}

type Task struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Title     string    `json:"title"`
	IsDone    bool      `json:"isDone"`
	CreatedAt time.Time `json:"createdAt"`
}

// Progress is the rounded percentage of done tasks, 0 when there are none.
func Progress(tasks []Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.IsDone {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(tasks)) * 100))
}

func validPriority(p string) bool {
	switch p {
	case "High", "Medium", "Low":
		return true
	}
	return false
}
