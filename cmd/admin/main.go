package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Domenick1991/airwallet/api"
	"github.com/Domenick1991/airwallet/config"
	"github.com/Domenick1991/airwallet/internal/bootstrap"
	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/Domenick1991/airwallet/internal/repository"
	"github.com/Domenick1991/airwallet/internal/service/wallet"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "airwallet-admin",
		Short:         "Administrative tasks for the airwallet store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", envOr("CONFIG_PATH", "config.yaml"), "path to config file")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(topupCmd())
	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// withStore opens the configured store (migrating it) for the duration of fn.
func withStore(ctx context.Context, fn func(*config.Config, repository.Store) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(cfg *config.Config, _ repository.Store) error {
				fmt.Printf("Schema is up to date (%s)\n", cfg.Database.Driver)
				return nil
			})
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users and flights",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(_ *config.Config, store repository.Store) error {
				users, flights, err := seed(cmd.Context(), store, time.Now())
				if err != nil {
					return err
				}
				for _, u := range users {
					fmt.Printf("user %d  %-14s balance %d\n", u.ID, u.Name, u.WalletBalance)
				}
				for _, f := range flights {
					fmt.Printf("flight %d  %s %s->%s  %d seats at %d\n",
						f.ID, f.FlightNumber, f.FromAirport, f.ToAirport, f.AvailableSeats, f.CurrentPrice)
				}
				return nil
			})
		},
	}
}

func topupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topup [user-id] [amount]",
		Short: "Add funds to a user's wallet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			return withStore(cmd.Context(), func(_ *config.Config, store repository.Store) error {
				balance, err := wallet.NewWalletService(store).AddFunds(cmd.Context(), userID, amount)
				if err != nil {
					return err
				}
				fmt.Printf("user %d balance %d\n", userID, balance)
				return nil
			})
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [user-id]",
		Short: "Show a user's wallet balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			return withStore(cmd.Context(), func(_ *config.Config, store repository.Store) error {
				balance, err := wallet.NewWalletService(store).GetBalance(cmd.Context(), userID)
				if err != nil {
					return err
				}
				fmt.Printf("user %d balance %d\n", userID, balance)
				return nil
			})
		},
	}
}

func tokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token [user-id]",
		Short: "Issue a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL()
			}
			token, err := api.IssueToken([]byte(cfg.Auth.JWTSecret), userID, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.token_ttl_minutes)")
	return cmd
}

// seed inserts the demo dataset. Flights depart relative to now.
func seed(ctx context.Context, store repository.Store, now time.Time) ([]domain.User, []domain.Flight, error) {
	users := []domain.User{
		{Name: "Demo Traveller", Email: "demo@airwallet.test", WalletBalance: 100000},
		{Name: "Frequent Flyer", Email: "flyer@airwallet.test", WalletBalance: 150000},
	}
	day := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	flights := []domain.Flight{
		sampleFlight("AW101", "AirWallet", "DEL", "BOM", day.Add(6*time.Hour), 2*time.Hour+10*time.Minute, 180, 4500),
		sampleFlight("AW202", "AirWallet", "BOM", "BLR", day.Add(9*time.Hour+30*time.Minute), 1*time.Hour+45*time.Minute, 150, 3800),
		sampleFlight("SK310", "SkyLink", "BLR", "HYD", day.Add(14*time.Hour), 1*time.Hour+15*time.Minute, 120, 2900),
		sampleFlight("SK415", "SkyLink", "HYD", "DEL", day.Add(30*time.Hour), 2*time.Hour+5*time.Minute, 160, 5200),
		sampleFlight("AW520", "AirWallet", "DEL", "CCU", day.Add(44*time.Hour), 2*time.Hour+20*time.Minute, 8, 6100),
	}

	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		for i := range users {
			if err := repos.Users().Create(ctx, &users[i]); err != nil {
				return fmt.Errorf("create user %s: %w", users[i].Email, err)
			}
		}
		for i := range flights {
			if err := repos.Flights().Create(ctx, &flights[i]); err != nil {
				return fmt.Errorf("create flight %s: %w", flights[i].FlightNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return users, flights, nil
}

func sampleFlight(number, airline, from, to string, departure time.Time, duration time.Duration, seats int, price int64) domain.Flight {
	return domain.Flight{
		FlightNumber:   number,
		Airline:        airline,
		FromAirport:    from,
		ToAirport:      to,
		DepartureTime:  departure,
		ArrivalTime:    departure.Add(duration),
		TotalSeats:     seats,
		AvailableSeats: seats,
		BasePrice:      price,
		CurrentPrice:   price,
	}
}
