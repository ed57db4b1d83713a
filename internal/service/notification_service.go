package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-registry-api/internal/models"
	"github.com/noah-isme/thesis-registry-api/pkg/jobs"
)

const notificationJobType = "thesis_started"

// Message is an outbound notification.
type Message struct {
	Sender     string
	Recipients []string
	Subject    string
	Body       string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer records messages in the log instead of delivering them.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs a logging mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send implements Mailer.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("notification",
		zap.String("from", msg.Sender),
		zap.Strings("to", msg.Recipients),
		zap.String("subject", msg.Subject),
	)
	return nil
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// NotificationService dispatches thesis notifications through a background
// queue once the triggering transaction has committed.
type NotificationService struct {
	mailer  Mailer
	queue   jobEnqueuer
	metrics *MetricsService
	sender  string
	enabled bool
	logger  *zap.Logger
}

// NewNotificationService constructs the service. Without a queue messages are sent inline.
func NewNotificationService(mailer Mailer, sender string, enabled bool, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{mailer: mailer, sender: sender, enabled: enabled, metrics: metrics, logger: logger}
}

// UseQueue routes messages through the queue.
func (s *NotificationService) UseQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Handle is the queue handler delivering one message.
func (s *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(Message)
	if !ok {
		return fmt.Errorf("unexpected notification payload %T", job.Payload)
	}
	err := s.mailer.Send(ctx, msg)
	s.metrics.RecordNotification(err == nil)
	return err
}

// NotifyThesisStarted informs internal supervisors and authors that the
// thesis has entered IN_PROGRESS.
func (s *NotificationService) NotifyThesisStarted(ctx context.Context, snapshot *models.ThesisSnapshot) error {
	if s == nil || !s.enabled || s.mailer == nil || snapshot == nil {
		return nil
	}
	recipients := startRecipients(snapshot)
	if len(recipients) == 0 {
		return nil
	}
	msg := Message{
		Sender:     s.sender,
		Recipients: recipients,
		Subject:    "Thesis started",
		Body:       fmt.Sprintf("The thesis %q has been approved and is now in progress.", snapshot.Topic),
	}
	if s.queue == nil {
		err := s.mailer.Send(ctx, msg)
		s.metrics.RecordNotification(err == nil)
		return err
	}
	return s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: notificationJobType, Payload: msg})
}

func startRecipients(snapshot *models.ThesisSnapshot) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(snapshot.Supervisions)+len(snapshot.Authors))
	add := func(u *models.User) {
		if u == nil || u.Email == "" {
			return
		}
		key := strings.ToLower(u.Email)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, u.Email)
	}
	for _, sup := range snapshot.Supervisions {
		if !sup.IsExternal {
			add(sup.User)
		}
	}
	for _, author := range snapshot.Authors {
		add(author.User)
	}
	return out
}
