package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greyhollow/sheet-api/internal/advancement"
	"github.com/greyhollow/sheet-api/internal/notifications"
	"github.com/greyhollow/sheet-api/internal/orchestrators/progression"
	"github.com/greyhollow/sheet-api/internal/repositories/character"
	"github.com/greyhollow/sheet-api/internal/sheet"
)

var (
	adminCharacterID   string
	adminClassItemID   string
	adminHitPoints     string
	adminItemID        string
	adminAdvancementID string
	adminLevel         int
	adminReferences    []string
	adminSelected      []string
	adminAbility       string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Run progression operations against the store directly",
}

var levelUpCmd = &cobra.Command{
	Use:   "level-up",
	Short: "Advance a character's class by one level",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc progression.Service) error {
			input := &progression.LevelUpInput{
				CharacterID: adminCharacterID,
				ClassItemID: adminClassItemID,
			}
			if adminHitPoints != "" {
				input.Data = map[string]*advancement.ApplyData{
					"hp": {HitPoints: adminHitPoints},
				}
			}
			output, err := svc.LevelUp(ctx, input)
			if err != nil {
				return err
			}
			return printSheetSummary(output.Character.ID, output.Sheet)
		})
	},
}

var levelDownCmd = &cobra.Command{
	Use:   "level-down",
	Short: "Reverse a character's most recent class level",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc progression.Service) error {
			output, err := svc.LevelDown(ctx, &progression.LevelDownInput{
				CharacterID: adminCharacterID,
				ClassItemID: adminClassItemID,
			})
			if err != nil {
				return err
			}
			return printSheetSummary(output.Character.ID, output.Sheet)
		})
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a single advancement with explicit choice data",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc progression.Service) error {
			output, err := svc.ApplyAdvancement(ctx, &progression.ApplyAdvancementInput{
				CharacterID:   adminCharacterID,
				ItemID:        adminItemID,
				AdvancementID: adminAdvancementID,
				Level:         adminLevel,
				Data: &advancement.ApplyData{
					HitPoints:  adminHitPoints,
					Ability:    adminAbility,
					Selected:   adminSelected,
					References: adminReferences,
				},
			})
			if err != nil {
				return err
			}
			return printSheetSummary(output.Character.ID, output.Sheet)
		})
	},
}

var reverseCmd = &cobra.Command{
	Use:   "reverse",
	Short: "Reverse a single applied advancement",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc progression.Service) error {
			output, err := svc.ReverseAdvancement(ctx, &progression.ReverseAdvancementInput{
				CharacterID:   adminCharacterID,
				ItemID:        adminItemID,
				AdvancementID: adminAdvancementID,
				Level:         adminLevel,
			})
			if err != nil {
				return err
			}
			return printSheetSummary(output.Character.ID, output.Sheet)
		})
	},
}

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Print a character's prepared sheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		stk, err := buildStack(ctx, cfg)
		if err != nil {
			return err
		}
		defer stk.Close()

		got, err := stk.repo.Get(ctx, character.GetInput{ID: adminCharacterID})
		if err != nil {
			return err
		}
		prepared, err := stk.preparer.Prepare(ctx, got.CharacterData)
		if err != nil {
			return err
		}
		return printSheetSummary(got.CharacterData.ID, prepared)
	},
}

func init() {
	adminCmd.PersistentFlags().StringVar(&adminCharacterID, "character", "", "character ID")
	_ = adminCmd.MarkPersistentFlagRequired("character")

	levelUpCmd.Flags().StringVar(&adminClassItemID, "class-item", "", "class item ID")
	levelUpCmd.Flags().StringVar(&adminHitPoints, "hit-points", "", `hit-point choice: "max", "avg", "roll", or a rolled value`)
	_ = levelUpCmd.MarkFlagRequired("class-item")

	levelDownCmd.Flags().StringVar(&adminClassItemID, "class-item", "", "class item ID")
	_ = levelDownCmd.MarkFlagRequired("class-item")

	for _, cmd := range []*cobra.Command{applyCmd, reverseCmd} {
		cmd.Flags().StringVar(&adminItemID, "item", "", "owning item ID")
		cmd.Flags().StringVar(&adminAdvancementID, "advancement", "", "advancement ID")
		cmd.Flags().IntVar(&adminLevel, "level", 1, "relevant level to apply at")
		_ = cmd.MarkFlagRequired("item")
		_ = cmd.MarkFlagRequired("advancement")
	}
	applyCmd.Flags().StringVar(&adminHitPoints, "hit-points", "", "hit-point choice")
	applyCmd.Flags().StringVar(&adminAbility, "ability", "", "chosen ability key")
	applyCmd.Flags().StringSliceVar(&adminSelected, "select", nil, "chosen option keys")
	applyCmd.Flags().StringSliceVar(&adminReferences, "ref", nil, "chosen content references")

	adminCmd.AddCommand(levelUpCmd, levelDownCmd, applyCmd, reverseCmd, sheetCmd)
}

func withService(ctx context.Context, fn func(context.Context, progression.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	stk, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer stk.Close()
	return fn(ctx, stk.service)
}

func printSheetSummary(characterID string, s *sheet.Sheet) error {
	summary := struct {
		CharacterID string                       `json:"character_id"`
		Level       int                          `json:"level"`
		HPMax       int                          `json:"hp_max"`
		Overrides   map[string]any               `json:"overrides"`
		Warnings    []notifications.Notification `json:"warnings,omitempty"`
	}{
		CharacterID: characterID,
		Level:       s.Character.Level(),
		HPMax:       s.HPMax,
		Overrides:   s.Overrides.Tree(),
		Warnings:    s.Warnings.All(),
	}
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sheet summary: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
