package main

import (
	"context"
	"flag"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mlmadmin/internal/config"
	"mlmadmin/internal/infra"
	"mlmadmin/internal/models/db_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/utils"
)

type seedConfig struct {
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
	AdminName     string `env:"SEED_ADMIN_NAME" envDefault:"Administrator"`
}

func main() {
	seed := flag.Bool("seed", true, "insert default phases, email templates and the bootstrap admin")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	db, err := infra.OpenDatabase(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("open database")
	}
	defer infra.CloseDatabase(db)

	if err := db.AutoMigrate(db_models.All()...); err != nil {
		logrus.WithError(err).Fatal("auto migrate")
	}
	logrus.WithField("tables", len(db_models.All())).Info("schema migrated")

	if !*seed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seedDefaults(ctx, db); err != nil {
		logrus.WithError(err).Fatal("seed defaults")
	}
}

func seedDefaults(ctx context.Context, db *gorm.DB) error {
	phases := repositories.NewPhaseRepository(db)
	for _, p := range services.DefaultPhases() {
		existing, err := phases.FindByLevel(ctx, p.Level)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := phases.Upsert(ctx, &p); err != nil {
			return err
		}
		logrus.WithField("level", p.Level).Info("phase seeded")
	}

	templates := repositories.NewEmailTemplateRepository(db)
	for _, tpl := range services.DefaultEmailTemplates() {
		existing, err := templates.FindByKey(ctx, tpl.Key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := templates.Save(ctx, &tpl); err != nil {
			return err
		}
		logrus.WithField("key", tpl.Key).Info("email template seeded")
	}

	var sc seedConfig
	if err := env.Parse(&sc); err != nil {
		return err
	}
	if sc.AdminEmail == "" || sc.AdminPassword == "" {
		return nil
	}
	return seedAdmin(ctx, repositories.NewAccountRepository(db), sc)
}

func seedAdmin(ctx context.Context, accounts repositories.AccountRepository, sc seedConfig) error {
	existing, err := accounts.FindByEmail(ctx, sc.AdminEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := utils.HashPassword(sc.AdminPassword)
	if err != nil {
		return err
	}
	code, err := utils.GenerateReferralCode(8)
	if err != nil {
		return err
	}

	admin := &db_models.Account{
		Name:         sc.AdminName,
		Email:        sc.AdminEmail,
		PasswordHash: hash,
		Role:         db_models.RoleAdmin,
		Status:       db_models.AccountActive,
		ReferralCode: code,
	}
	if err := accounts.Insert(ctx, admin); err != nil {
		return err
	}
	logrus.WithField("email", sc.AdminEmail).Info("bootstrap admin created")
	return nil
}
