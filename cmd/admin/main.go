package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mesikahq/clinic-core/internal/audit"
	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/billing"
	"github.com/mesikahq/clinic-core/internal/config"
	"github.com/mesikahq/clinic-core/internal/database"
	"github.com/mesikahq/clinic-core/internal/db/migrate"
	"github.com/mesikahq/clinic-core/internal/money"
	"github.com/mesikahq/clinic-core/internal/pharmacy"
	"github.com/mesikahq/clinic-core/internal/sequence"
)

// seedCatalog is the shape of seed/catalog.yaml.
type seedCatalog struct {
	Services []struct {
		Name        string  `yaml:"name"`
		Category    *string `yaml:"category"`
		Price       string  `yaml:"price"`
		Description *string `yaml:"description"`
	} `yaml:"services"`
	Medications []struct {
		Name          string  `yaml:"name"`
		GenericName   *string `yaml:"generic_name"`
		Category      *string `yaml:"category"`
		Unit          string  `yaml:"unit"`
		UnitPrice     string  `yaml:"unit_price"`
		StockQuantity int     `yaml:"stock_quantity"`
		MinStockLevel int     `yaml:"min_stock_level"`
	} `yaml:"medications"`
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file: %v", err)
	}

	root := &cobra.Command{
		Use:   "admin",
		Short: "Operational tooling for the clinic service",
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Apply or roll back schema migrations",
		Args:  cobra.ExactArgs(1),
		RunE:  runMigrate,
	}

	seedCmd := &cobra.Command{
		Use:   "seed [catalog.yaml]",
		Short: "Load the service and medication catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSeed,
	}

	createAdminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the bootstrap admin user",
		RunE:  runCreateAdmin,
	}
	createAdminCmd.Flags().String("email", "", "admin email")
	createAdminCmd.Flags().String("password", "", "admin password")
	createAdminCmd.Flags().String("name", "Administrator", "admin full name")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("password")

	root.AddCommand(migrateCmd, seedCmd, createAdminCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(ctx, database.PostgresConfig{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		Database:    cfg.Database.Name,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		SSLMode:     cfg.Database.SSLMode,
		MaxPoolSize: cfg.Database.MaxPoolSize,
		ConnTimeout: cfg.Database.ConnTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer database.Disconnect(db)

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	manager := migrate.NewManager(db, cfg.MigrationsDir, logger)
	switch args[0] {
	case "up":
		return manager.Up(ctx)
	case "down":
		return manager.Down(ctx)
	default:
		return fmt.Errorf("unknown direction %q, want up or down", args[0])
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer database.Disconnect(db)

	path := "seed/catalog.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var catalog seedCatalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	// catalog creation never consults the patient/user directories
	billingSvc := billing.NewService(billing.NewCatalogRepoPG(db), billing.NewInvoiceRepoPG(db),
		sequence.NewPGGenerator(db), nil, nil)
	pharmacySvc := pharmacy.NewService(pharmacy.NewMedicationRepoPG(db), pharmacy.NewPrescriptionRepoPG(db),
		nil, nil)

	for _, s := range catalog.Services {
		price, err := money.Parse(s.Price)
		if err != nil {
			return fmt.Errorf("service %q: %w", s.Name, err)
		}
		item := &billing.CatalogItem{
			Name:        s.Name,
			Category:    s.Category,
			Price:       price,
			Description: s.Description,
		}
		if err := billingSvc.CreateCatalogItem(ctx, item); err != nil {
			return fmt.Errorf("service %q: %w", s.Name, err)
		}
		fmt.Printf("seeded service %s (%s)\n", s.Name, price)
	}

	for _, m := range catalog.Medications {
		price, err := money.Parse(m.UnitPrice)
		if err != nil {
			return fmt.Errorf("medication %q: %w", m.Name, err)
		}
		med := &pharmacy.Medication{
			Name:          m.Name,
			GenericName:   m.GenericName,
			Category:      m.Category,
			Unit:          m.Unit,
			UnitPrice:     price,
			StockQuantity: m.StockQuantity,
			MinStockLevel: m.MinStockLevel,
		}
		if err := pharmacySvc.CreateMedication(ctx, med); err != nil {
			return fmt.Errorf("medication %q: %w", m.Name, err)
		}
		fmt.Printf("seeded medication %s (%s)\n", m.Name, price)
	}

	return nil
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer database.Disconnect(db)

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	name, _ := cmd.Flags().GetString("name")

	authSvc := auth.NewService(auth.NewUserRepoPG(db), audit.Nop(), auth.Config{
		JWTSecret:   cfg.Auth.JWTSecret,
		TokenExpiry: cfg.Auth.TokenExpiry,
	})
	user, err := authSvc.Register(ctx, email, password, name, []string{auth.RoleAdmin})
	if err != nil {
		return err
	}
	fmt.Printf("created admin %s (%s)\n", user.Email, user.ID)
	return nil
}
