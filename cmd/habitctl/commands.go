package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"atomichabits/demo"
	"atomichabits/repository"
	"atomichabits/usecase"

	"github.com/charmbracelet/log"
)

type InitDBCmd struct{}

func (cmd *InitDBCmd) Run(c *Context) error {
	if c.local != nil {
		if err := c.local.Init(c.Ctx); err != nil {
			return err
		}
		fmt.Printf("Local store ready at %s\n", c.Config.LocalStore.Path)
		return nil
	}

	db := c.mongo.Database(c.Config.Database.DatabaseName)
	if err := repository.SetupIndexes(c.Ctx, db, c.Config.Database); err != nil {
		return err
	}
	fmt.Printf("Indexes created in %s\n", c.Config.Database.DatabaseName)
	return nil
}

type SeedCmd struct {
	User string `required:"" help:"User id to seed."`
	Days int    `default:"90" help:"Days of completion history to generate."`
	Seed uint64 `default:"42" help:"Random seed; the same seed gives the same data."`
}

func (cmd *SeedCmd) Run(c *Context) error {
	habits, completions := demo.Generate(cmd.User, c.Store.Now(), demo.Options{Days: cmd.Days, Seed: cmd.Seed})

	if err := c.Store.SaveHabits(c.Ctx, cmd.User, habits); err != nil {
		return err
	}
	for _, completion := range completions {
		if err := c.Store.SaveCompletion(c.Ctx, completion); err != nil {
			return err
		}
	}

	if c.Cache != nil {
		if err := c.Cache.Invalidate(c.Ctx, cmd.User); err != nil {
			log.Warn("failed to invalidate stats cache", "user", cmd.User, "err", err)
		}
	}

	fmt.Printf("Seeded %d habits and %d completions for %s\n", len(habits), len(completions), cmd.User)
	return nil
}

type ResetCmd struct {
	User string `xor:"target" required:"" help:"Reset a single user."`
	All  bool   `xor:"target" required:"" help:"Reset every user that has habits."`
}

func (cmd *ResetCmd) Run(c *Context) error {
	service := usecase.NewHabitsService(c.Store, c.Cache)

	users := []string{cmd.User}
	if cmd.All {
		ids, err := c.Store.UserIDsWithHabits(c.Ctx)
		if err != nil {
			return err
		}
		users = ids
	}

	total := 0
	var errs []error
	for _, userID := range users {
		count, err := service.ResetHabits(c.Ctx, userID)
		if err != nil {
			log.Error("reset failed", "user", userID, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", userID, err))
			continue
		}
		if count > 0 {
			log.Info("reset habits", "user", userID, "count", count)
		}
		total += count
	}

	fmt.Printf("Reset %d habits across %d users\n", total, len(users))
	return errors.Join(errs...)
}

type StatsCmd struct {
	User  string `required:"" help:"User id to report on."`
	Range string `default:"default" enum:"default,rolling,current_year,last_year,all_time" help:"Preset window."`
	From  string `help:"First day (YYYY-MM-DD); overrides the preset start."`
	To    string `help:"Last day (YYYY-MM-DD); overrides the preset end."`
	JSON  bool   `name:"json" help:"Print the full stats document as JSON."`
}

func (cmd *StatsCmd) Run(c *Context) error {
	service := usecase.NewHabitsService(c.Store, c.Cache)
	stats, err := service.GetStats(c.Ctx, cmd.User, usecase.StatsWindow{Range: cmd.Range, From: cmd.From, To: cmd.To})
	if err != nil {
		return err
	}

	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Window:            %s to %s\n", stats.WindowStart.Format("2006-01-02"), stats.WindowEnd.Format("2006-01-02"))
	fmt.Printf("Current streak:    %d\n", stats.CurrentStreak)
	fmt.Printf("Max streak:        %d\n", stats.MaxStreak)
	fmt.Printf("Active days:       %d\n", stats.TotalActiveDays)
	fmt.Printf("Total completions: %d\n", stats.TotalCompletions)
	return nil
}
