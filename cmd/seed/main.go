package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"festpass/internal/events"
	"festpass/internal/shared/config"
	"festpass/internal/shared/database"
	"festpass/internal/users"
	"festpass/pkg/calendar"
	"festpass/pkg/logger"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "qwerty"

type Seeder struct {
	db  *database.DB
	cfg *config.Config
	log *logger.Logger
}

func main() {
	_ = godotenv.Load()
	appLogger := logger.GetDefault().WithComponent("seed")

	cfg := config.Load()
	ctx := context.Background()

	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		appLogger.Error("Failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	seeder := &Seeder{db: db, cfg: cfg, log: appLogger}

	if err := seeder.CleanDatabase(ctx); err != nil {
		appLogger.Error("Failed to clean database", slog.Any("error", err))
		os.Exit(1)
	}
	appLogger.Info("database cleaned")

	if err := seeder.SeedAll(ctx); err != nil {
		appLogger.Error("Failed to seed database", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Printf("\nSeeding completed. Every account uses the password %q.\n", seedPassword)
}

// CleanDatabase truncates all tables, children first.
func (s *Seeder) CleanDatabase(ctx context.Context) error {
	tables := []string{
		"check_ins",
		"tickets",
		"daily_inventory",
		"events",
		"users",
	}

	return s.db.PostgreSQL.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll(ctx context.Context) error {
	userIDs, err := s.SeedUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedEvents(ctx, userIDs["manager"]); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			s.log.Warn("failed to clear Redis cache", slog.Any("error", err))
		}
	}
	return nil
}

// SeedUsers creates one account per role.
func (s *Seeder) SeedUsers(ctx context.Context) (map[string]uuid.UUID, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	password := string(hashed)

	usersData := []struct {
		key   string
		name  string
		email string
		role  users.Role
	}{
		{"admin", "Festival Admin", "admin@festpass.in", users.RoleAdmin},
		{"manager", "Venue Manager", "manager@festpass.in", users.RoleVenueManager},
		{"coordinator", "Gate Coordinator", "gate@festpass.in", users.RoleCoordinator},
		{"user", "Asha Rao", "asha@festpass.in", users.RoleUser},
	}

	userIDs := make(map[string]uuid.UUID, len(usersData))
	for _, u := range usersData {
		user := users.User{
			ID:       uuid.New(),
			Name:     u.name,
			Email:    u.email,
			Password: &password,
			Role:     u.role,
		}
		if err := s.db.PostgreSQL.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", u.email, err)
		}
		userIDs[u.key] = user.ID
		s.log.Info("created user", slog.String("email", user.Email), slog.String("role", string(user.Role)))
	}

	return userIDs, nil
}

// SeedEvents creates festivals starting a month out so they stay bookable.
func (s *Seeder) SeedEvents(ctx context.Context, ownerID uuid.UUID) error {
	start := calendar.Today(s.cfg.Booking.Location()).AddDays(30)
	seasonPass := decimal.NewFromInt(1200)

	eventsData := []struct {
		title    string
		venue    string
		days     int
		price    int64
		allDay   *decimal.Decimal
		capacity int
	}{
		{"Monsoon Music Festival", "Mahalaxmi Racecourse, Mumbai", 3, 500, &seasonPass, 200},
		{"Indie Film Weekend", "Prithvi Theatre, Mumbai", 2, 350, nil, 80},
		{"Startup Expo", "Bangalore International Exhibition Centre", 1, 999, nil, 0},
	}

	for i, e := range eventsData {
		eventStart := start.AddDays(i * 7)
		id := uuid.New()
		event := events.Event{
			ID:          id,
			Title:       e.title,
			Slug:        slug.Make(e.title) + "-" + id.String()[:8],
			Description: e.title + " seeded for local testing",
			Venue:       e.venue,
			StartDate:   eventStart,
			EndDate:     eventStart.AddDays(e.days - 1),
			TicketConfig: events.TicketConfig{
				Price:       decimal.NewFromInt(e.price),
				AllDayPrice: e.allDay,
				Currency:    "INR",
				Quantity:    e.capacity,
			},
			CreatedBy: ownerID,
			CreatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.WithContext(ctx).Create(&event).Error; err != nil {
			return fmt.Errorf("failed to create event %s: %w", e.title, err)
		}
		s.log.Info("created event",
			slog.String("id", event.ID.String()),
			slog.String("title", event.Title),
			slog.String("start", event.StartDate.String()),
			slog.Int("capacity", event.DailyCapacity(s.cfg.Booking.DefaultDailyCapacity)))
	}

	return nil
}
