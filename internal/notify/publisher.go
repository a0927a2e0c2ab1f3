package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-proxy-api/internal/models"
)

// AssignmentEvent is the payload published after a committed substitution so
// downstream channels (push, SMS, chat) can alert the assigned teacher.
type AssignmentEvent struct {
	VacancyID     string    `json:"vacancy_id"`
	Date          string    `json:"date"`
	Slot          int       `json:"slot"`
	ClassName     string    `json:"class_name"`
	Subject       string    `json:"subject"`
	Section       string    `json:"section"`
	TeacherID     string    `json:"teacher_id"`
	TeacherName   string    `json:"teacher_name"`
	AbsentTeacher string    `json:"absent_teacher"`
	CommittedAt   time.Time `json:"committed_at"`
}

type failureCounter interface {
	RecordNotifyFailure()
}

// Publisher pushes assignment events to a Redis channel. Delivery is
// fire-and-forget: a publish failure is logged and counted, never rolling
// back the commit that produced it.
type Publisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
	metrics failureCounter
}

// NewPublisher constructs the publisher. metrics may be nil.
func NewPublisher(client *redis.Client, channel string, logger *zap.Logger, metrics failureCounter) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "proxy.assignments"
	}
	return &Publisher{client: client, channel: channel, logger: logger, metrics: metrics}
}

// AssignmentCommitted publishes the event for a freshly resolved vacancy.
func (p *Publisher) AssignmentCommitted(ctx context.Context, record models.SubstitutionRecord) {
	if p == nil || p.client == nil {
		return
	}
	event := AssignmentEvent{
		VacancyID:     record.ID,
		Date:          models.DateKey(record.Date),
		Slot:          record.Slot,
		ClassName:     record.ClassName,
		Subject:       record.Subject,
		Section:       record.Section,
		TeacherID:     record.SubstituteTeacherID,
		TeacherName:   record.SubstituteTeacherName,
		AbsentTeacher: record.AbsentTeacherName,
		CommittedAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("marshal assignment event", zap.Error(err))
		p.dropped()
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.logger.Warn("publish assignment event",
			zap.String("vacancy_id", record.ID),
			zap.Error(err))
		p.dropped()
	}
}

func (p *Publisher) dropped() {
	if p.metrics != nil {
		p.metrics.RecordNotifyFailure()
	}
}
