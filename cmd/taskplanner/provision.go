package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"task-planner/internal/repository"
	"task-planner/internal/service"
)

var (
	provisionUserID     uint
	provisionTelegramID int64
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Copy the default vocabulary into a user's settings",
	Long: `Copy the default vocabulary into a user's settings.

Kinds the user already has rows for are left untouched. With --telegram the
user is created if it does not exist yet.`,
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().UintVar(&provisionUserID, "user", 0, "Internal user id")
	provisionCmd.Flags().Int64Var(&provisionTelegramID, "telegram", 0, "Telegram user id")
}

func runProvision(cmd *cobra.Command, args []string) error {
	if (provisionUserID == 0) == (provisionTelegramID == 0) {
		return fmt.Errorf("exactly one of --user or --telegram must be provided")
	}

	db, closeDB, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	users := repository.NewUserRepository(db)
	settings := service.NewSettingsService(users, repository.NewVocabularyRepository(db), log)

	userID := provisionUserID
	if provisionTelegramID != 0 {
		user, err := users.FindByTelegramID(cmd.Context(), provisionTelegramID)
		if errors.Is(err, repository.ErrNotFound) {
			user, err = users.UpsertFromTelegram(cmd.Context(), provisionTelegramID, "", "", "")
		}
		if err != nil {
			return err
		}
		userID = user.ID
	} else {
		ok, err := users.Exists(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %d: %w", userID, service.ErrUserNotFound)
		}
	}

	created, err := settings.Provision(cmd.Context(), userID)
	if err != nil {
		return err
	}
	if len(created) == 0 {
		cmd.Printf("user %d already has settings\n", userID)
		return nil
	}
	for kind, n := range created {
		cmd.Printf("user %d: %d %s item(s) created\n", userID, n, kind)
	}
	return nil
}
