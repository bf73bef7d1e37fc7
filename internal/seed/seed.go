package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/NestyJo/video-chat-backend/internal/models"
	"github.com/NestyJo/video-chat-backend/internal/scheduling"
)

const demoPassword = "password123"

// Run inserts demo accounts and a sample meeting for local development. It is
// idempotent: a database that already holds users is left untouched.
func Run(ctx context.Context, db *gorm.DB, lifecycle *scheduling.Lifecycle) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		slog.Info("demo seed skipped, users already present", "users", count)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []models.User{
		{Username: "admin", Email: "admin@example.com", Password: string(hash), FirstName: "Ada", LastName: "Admin", Role: models.RoleAdmin, Active: true},
		{Username: "alice", Email: "alice@example.com", Password: string(hash), FirstName: "Alice", LastName: "Anders", Role: models.RoleUser, Active: true},
		{Username: "bob", Email: "bob@example.com", Password: string(hash), FirstName: "Bob", LastName: "Berg", Role: models.RoleUser, Active: true},
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	alice, bob := users[1], users[2]
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)

	_, err = lifecycle.CreateMeeting(ctx, alice.ID, scheduling.CreateMeetingInput{
		Title:            "Weekly Planning",
		Description:      "Demo meeting created by the seeder.",
		StartTime:        start,
		EndTime:          start.Add(time.Hour),
		MeetingType:      models.MeetingTypeGroup,
		GeneratePassword: true,
		AllowGuestAccess: true,
		Participants: []scheduling.ParticipantInput{
			scheduling.RegisteredParticipant(bob.ID),
			scheduling.GuestParticipant("carol@external.example", "Carol"),
		},
	})
	if err != nil {
		return fmt.Errorf("seed meeting: %w", err)
	}

	slog.Info("demo data seeded", "users", len(users), "password", demoPassword)
	return nil
}
