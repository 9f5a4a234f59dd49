package jobs

import (
	"context"
	"fmt"
	"time"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/logger"
	"alcyxob/gym-manager/internal/repository"
)

// MembershipReminder tells staff about memberships that are about to run out.
type MembershipReminder struct {
	clients       repository.ClientRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	windowDays    int
	now           func() time.Time
}

func NewMembershipReminder(
	clients repository.ClientRepository,
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	windowDays int,
) *MembershipReminder {
	if windowDays < 1 {
		windowDays = 7
	}
	return &MembershipReminder{
		clients:       clients,
		users:         users,
		notifications: notifications,
		windowDays:    windowDays,
		now:           time.Now,
	}
}

// Run notifies every active user once per day about each active client whose
// membership ends within the window. It returns the number of notifications
// written. Failures for single recipients are logged and skipped.
func (j *MembershipReminder) Run(ctx context.Context) (int, error) {
	now := j.now().UTC()
	expiring, err := j.clients.ExpiringBetween(ctx, now, now.AddDate(0, 0, j.windowDays), 0)
	if err != nil {
		return 0, fmt.Errorf("load expiring memberships: %w", err)
	}
	if len(expiring) == 0 {
		return 0, nil
	}
	staff, err := j.users.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("load staff: %w", err)
	}

	log := logger.FromContext(ctx)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var batch []domain.Notification
	for i := range expiring {
		client := &expiring[i]
		ref := domain.ClientRef(client.ID)
		days := client.DaysRemaining(now)
		for _, u := range staff {
			sent, err := j.notifications.ExistsSince(ctx, u.ID, domain.NotifyMembership, *ref, today)
			if err != nil {
				log.Warn("reminder lookup failed", "client_id", client.ID.Hex(), "user_id", u.ID.Hex(), "error", err)
				continue
			}
			if sent {
				continue
			}
			batch = append(batch, domain.Notification{
				Recipient: u.ID,
				Type:      domain.NotifyMembership,
				Title:     "Membership expiring",
				Message:   fmt.Sprintf("%s's %s membership ends in %s", client.FullName(), client.MembershipType, dayCount(days)),
				Priority:  reminderPriority(days),
				Reference: ref,
			})
		}
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := j.notifications.CreateMany(ctx, batch); err != nil {
		return 0, fmt.Errorf("write reminders: %w", err)
	}
	return len(batch), nil
}

func dayCount(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func reminderPriority(days int) domain.Priority {
	switch {
	case days <= 1:
		return domain.PriorityHigh
	case days <= 3:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
