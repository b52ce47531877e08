package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/fuse"
	"github.com/systemshift/gitlet/internal/logging"
	"github.com/systemshift/gitlet/internal/repo"
)

// exactArgs is cobra.ExactArgs reporting ErrIncorrectOperands.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return ErrIncorrectOperands
		}
		return nil
	}
}

// withRepo adapts a function over an open repository to a cobra RunE.
func withRepo(app *App, fn func(r *repo.Repository, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		r, err := app.open()
		if err != nil {
			return err
		}
		return fn(r, args)
	}
}

// namedBranch distinguishes a missing branch operand from a missing
// checkout target.
func namedBranch(err error) error {
	if errors.Is(err, repo.ErrNoSuchBranch) {
		return fmt.Errorf("%w: %w", errBranchNotFound, err)
	}
	return err
}

func commands(app *App) []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "init",
			Short: "Create a repository in the current directory",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := repo.Init(app.Dir, app.options())
				return err
			},
		},
		{
			Use:   "add <file>",
			Short: "Stage a file for the next commit",
			Args:  exactArgs(1),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				return r.Add(args[0])
			}),
		},
		{
			Use:   "rm <file>",
			Short: "Unstage a file and stage its removal if tracked",
			Args:  exactArgs(1),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				return r.Remove(args[0])
			}),
		},
		{
			Use:   "commit <message>",
			Short: "Record the staged changes",
			Args: func(cmd *cobra.Command, args []string) error {
				if len(args) > 1 {
					return ErrIncorrectOperands
				}
				return nil
			},
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				if len(args) == 0 {
					return repo.ErrEmptyCommitMessage
				}
				_, err := r.Commit(args[0])
				return err
			}),
		},
		checkoutCommand(app),
		{
			Use:   "branch <name>",
			Short: "Create a branch at the current commit",
			Args:  exactArgs(1),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				return r.Branch(args[0])
			}),
		},
		{
			Use:   "rm-branch <name>",
			Short: "Delete a branch pointer",
			Args:  exactArgs(1),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				return namedBranch(r.RemoveBranch(args[0]))
			}),
		},
		{
			Use:   "log",
			Short: "Show the history of the current branch",
			Args:  exactArgs(0),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				for c, err := range r.Log() {
					if err != nil {
						return err
					}
					app.println(c.LogEntry())
				}
				return nil
			}),
		},
		{
			Use:   "global-log",
			Short: "Show every commit ever made",
			Args:  exactArgs(0),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				for c, err := range r.GlobalLog() {
					if err != nil {
						return err
					}
					app.println(c.LogEntry())
				}
				return nil
			}),
		},
		{
			Use:   "find <message>",
			Short: "Print the IDs of commits with the given message",
			Args:  exactArgs(1),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				ids, err := r.Find(args[0])
				if err != nil {
					return err
				}
				for _, id := range ids {
					app.println(id)
				}
				return nil
			}),
		},
		{
			Use:   "status",
			Short: "Show branches, staged files and working-directory changes",
			Args:  exactArgs(0),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				st, err := r.Status()
				if err != nil {
					return err
				}
				fmt.Fprint(app.Out, st.String())
				return nil
			}),
		},
		{
			Use:   "reset <commit>",
			Short: "Check out a commit and move the current branch to it",
			Args:  exactArgs(1),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				return r.Reset(args[0])
			}),
		},
		{
			Use:   "merge <branch>",
			Short: "Merge a branch into the current branch",
			Args:  exactArgs(1),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				res, err := r.Merge(args[0])
				if err != nil {
					return namedBranch(err)
				}
				app.printMerge(res)
				return nil
			}),
		},
		{
			Use:   "add-remote <name> <path>",
			Short: "Register another repository's .gitlet directory",
			Args:  exactArgs(2),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				return r.AddRemote(args[0], args[1])
			}),
		},
		{
			Use:   "rm-remote <name>",
			Short: "Forget a remote",
			Args:  exactArgs(1),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				return r.RemoveRemote(args[0])
			}),
		},
		{
			Use:   "push <remote> <branch>",
			Short: "Append the current branch's commits to a remote branch",
			Args:  exactArgs(2),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				return r.Push(args[0], args[1])
			}),
		},
		{
			Use:   "fetch <remote> <branch>",
			Short: "Copy a remote branch into <remote>/<branch>",
			Args:  exactArgs(2),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				_, err := r.Fetch(args[0], args[1])
				return err
			}),
		},
		{
			Use:   "pull <remote> <branch>",
			Short: "Fetch a remote branch and merge it",
			Args:  exactArgs(2),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				res, err := r.Pull(args[0], args[1])
				if err != nil {
					return err
				}
				app.printMerge(res)
				return nil
			}),
		},
		{
			Use:   "hash-object <file>",
			Short: "Print a file's blob ID and CID without storing it",
			Args:  exactArgs(1),
			RunE: withRepo(app, func(r *repo.Repository, args []string) error {
				id, cid, err := r.HashObject(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "%s %s\n", id, cid)
				return nil
			}),
		},
		mountCommand(app),
	}
}

func (a *App) printMerge(res *repo.MergeResult) {
	switch {
	case res.Outcome == repo.MergeUpToDate:
		a.println("Given branch is an ancestor of the current branch.")
	case res.Outcome == repo.MergeFastForward:
		a.println("Current branch fast-forwarded.")
	case res.Conflict():
		a.println("Encountered a merge conflict.")
	}
}

// checkoutCommand accepts the three checkout forms, told apart by the
// position of "--":
//
//	checkout -- <file>
//	checkout <commit> -- <file>
//	checkout <branch>
func checkoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout [<commit>] -- <file> | <branch>",
		Short: "Restore a file or switch branches",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash := cmd.ArgsLenAtDash()
			var run func(*repo.Repository) error
			switch {
			case len(args) == 1 && dash == 0:
				run = func(r *repo.Repository) error { return r.CheckoutFile(args[0]) }
			case len(args) == 2 && dash == 1:
				run = func(r *repo.Repository) error { return r.CheckoutFileFromCommit(args[0], args[1]) }
			case len(args) == 1 && dash == -1:
				run = func(r *repo.Repository) error { return r.CheckoutBranch(args[0]) }
			default:
				return ErrIncorrectOperands
			}
			r, err := app.open()
			if err != nil {
				return err
			}
			return run(r)
		},
	}
}

func mountCommand(app *App) *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "mount <dir>",
		Short: "Serve branches and commits as a read-only FUSE filesystem",
		Args:  exactArgs(1),
		RunE: withRepo(app, func(r *repo.Repository, args []string) error {
			mountpoint := args[0]
			if err := os.MkdirAll(mountpoint, 0755); err != nil {
				return fmt.Errorf("create mountpoint: %w", err)
			}
			server, err := fuse.Mount(mountpoint, r.DB(), debug)
			if err != nil {
				return fmt.Errorf("mount %s: %w", mountpoint, err)
			}
			log := logging.Default().WithField("mountpoint", mountpoint)

			done := make(chan os.Signal, 1)
			signal.Notify(done, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(done)
			go func() {
				<-done
				log.Info("unmounting")
				if err := server.Unmount(); err != nil {
					log.WithError(err).Warn("unmount failed")
				}
			}()

			log.Info("mounted")
			server.Wait()
			return nil
		}),
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "log FUSE requests")
	return cmd
}
