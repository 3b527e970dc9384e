package service

import (
	"github.com/deppfellow/kennywood-api/internal/lib/job"
	"github.com/deppfellow/kennywood-api/internal/repository"
	"github.com/deppfellow/kennywood-api/internal/server"
)

type Services struct {
	Auth      *AuthService
	Itinerary *ItineraryService
	Job       *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var reminders ReminderScheduler
	if s.Job != nil && s.Config.Reminder.Enabled {
		reminders = s.Job
	}

	return &Services{
		Auth:      NewAuthService(s),
		Itinerary: NewItineraryService(s.Logger, repos.Itinerary, repos.Customer, reminders),
		Job:       s.Job,
	}, nil
}
