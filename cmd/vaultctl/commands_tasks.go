package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/task"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/vault"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var (
		priority string
		category string
		due      string
		tags     []string
		parent   string
		desc     string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, store, err := openUnlocked(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll(v, store)

			t := task.Task{
				Title:       args[0],
				Description: desc,
				Priority:    task.Priority(priority),
				Category:    category,
				Tags:        tags,
			}
			if due != "" {
				d, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("bad --due (want YYYY-MM-DD): %w", err)
				}
				t.DueDate = &d
			}

			var added task.Task
			if parent == "" {
				added, err = v.AddTask(cmd.Context(), t)
			} else {
				added, err = v.AddSubtask(cmd.Context(), splitPath(parent), t)
			}
			if err != nil {
				return err
			}
			fmt.Println(added.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "low|medium|high|critical")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag (repeatable)")
	cmd.Flags().StringVar(&parent, "parent", "", "parent task path, ids joined by /")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "description")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the task tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, store, err := openUnlocked(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll(v, store)

			doc, err := v.Document()
			if err != nil {
				return err
			}
			if len(doc.Tasks) == 0 {
				fmt.Println("(no tasks)")
				return nil
			}
			printForest(doc.Tasks, 0)
			return nil
		},
	}
}

func printForest(ts []task.Task, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, t := range ts {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("%s[%s] %s  (%s", indent, mark, t.Title, t.Priority)
		if t.Category != "" {
			line += ", " + t.Category
		}
		if t.DueDate != nil {
			line += ", due " + t.DueDate.Format("2006-01-02")
		}
		line += ")  " + t.ID
		fmt.Println(line)
		printForest(t.Subtasks, depth+1)
	}
}

func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <path>",
		Short: "Mark a task completed (path is ids joined by /)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, store, err := openUnlocked(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll(v, store)

			done := true
			if _, err := v.UpdateTask(cmd.Context(), splitPath(args[0]), task.Patch{Completed: &done}); err != nil {
				return err
			}
			fmt.Println("done")
			return nil
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a task and its subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, store, err := openUnlocked(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll(v, store)
			return v.DeleteTask(cmd.Context(), splitPath(args[0]))
		},
	}
}

func newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, store, err := openUnlocked(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll(v, store)
			doc, err := v.Document()
			if err != nil {
				return err
			}
			for _, c := range doc.Categories {
				fmt.Println(c)
			}
			return nil
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, store, err := openUnlocked(cmd.Context())
				if err != nil {
					return err
				}
				defer closeAll(v, store)
				_, err = v.AddCategory(cmd.Context(), args[0])
				return err
			},
		},
		&cobra.Command{
			Use:   "rm <name>",
			Short: "Remove a category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, store, err := openUnlocked(cmd.Context())
				if err != nil {
					return err
				}
				defer closeAll(v, store)
				_, err = v.RemoveCategory(cmd.Context(), args[0])
				return err
			},
		},
	)
	return cmd
}

func newSettingsCmd() *cobra.Command {
	var (
		timeout  int
		theme    string
		autoLock string
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change vault settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, store, err := openUnlocked(cmd.Context())
			if err != nil {
				return err
			}
			defer closeAll(v, store)

			s, err := v.Settings()
			if err != nil {
				return err
			}

			changed := false
			if cmd.Flags().Changed("timeout") {
				s.AutoLockTimeoutMinutes = timeout
				changed = true
			}
			if cmd.Flags().Changed("theme") {
				s.Theme = vault.Theme(theme)
				changed = true
			}
			if cmd.Flags().Changed("autolock") {
				switch autoLock {
				case "on":
					s.AutoLockEnabled = true
				case "off":
					s.AutoLockEnabled = false
				default:
					return errors.New("--autolock must be on or off")
				}
				changed = true
			}
			if changed {
				if err := v.SaveSettings(cmd.Context(), s); err != nil {
					return err
				}
			}

			fmt.Printf("auto-lock: %v (%d min)\ntheme: %s\nbiometric: %v\n",
				s.AutoLockEnabled, s.AutoLockTimeoutMinutes, s.Theme, s.BiometricEnabled)
			return nil
		},
	}
	cmd.Flags().IntVar(&timeout, "timeout", 5, "auto-lock timeout in minutes")
	cmd.Flags().StringVar(&theme, "theme", "dark", "dark|light")
	cmd.Flags().StringVar(&autoLock, "autolock", "on", "on|off")
	return cmd
}
