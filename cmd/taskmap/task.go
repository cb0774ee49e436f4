package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/taskmap/internal/event"
	"github.com/bamsammich/taskmap/internal/task"
	"github.com/bamsammich/taskmap/internal/transport/proto"
)

// defaultFetchCount is how many events fetch asks for without -n.
const defaultFetchCount = 512

var registerCmd = &cobra.Command{
	Use:   "register -n NAME [-b BYTES] [-m MASK] [-p PATH]",
	Short: "Register a new task",
	Long: `Register a new task under NAME. The daemon assigns the task an ID.

Each bit of the task's bitmap covers -b bytes; without -b the daemon's
default block size is used. -m selects the event kinds queued for the task,
as a hex mask (0x13) or kind names (added,modified). -p restricts events to
paths under the given directory, resolved against the current one.`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

var deregisterCmd = &cobra.Command{
	Use:   "deregister -i ID",
	Short: "Deregister a task",
	Args:  cobra.NoArgs,
	RunE:  runDeregister,
}

var markCmd = &cobra.Command{
	Use:   "mark -i ID -o OFFSET -l LEN",
	Short: "Mark a byte range as processed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRange(cmd, func(ctx context.Context, c *proto.Client, id uint32, off, length uint64) error {
			if err := c.Mark(ctx, id, off, length); err != nil {
				return err
			}
			report().Marked(id, off, length)
			return nil
		})
	},
}

var unmarkCmd = &cobra.Command{
	Use:   "unmark -i ID -o OFFSET -l LEN",
	Short: "Clear a byte range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRange(cmd, func(ctx context.Context, c *proto.Client, id uint32, off, length uint64) error {
			if err := c.Unmark(ctx, id, off, length); err != nil {
				return err
			}
			report().Unmarked(id, off, length)
			return nil
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check -i ID -o OFFSET -l LEN",
	Short: "Check whether a byte range is fully marked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRange(cmd, func(ctx context.Context, c *proto.Client, id uint32, off, length uint64) error {
			done, err := c.Check(ctx, id, off, length)
			if err != nil {
				return err
			}
			report().Checked(id, off, length, done)
			return nil
		})
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch -i ID [-n COUNT] [--wait DURATION]",
	Short: "Fetch and print pending change events",
	Long: `Fetch up to COUNT pending events for a task and print them. Fetched
events are removed from the task's queue. With --wait the daemon holds the
request until an event arrives or the duration elapses.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered tasks",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the daemon is reachable",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func init() {
	registerCmd.Flags().StringP("name", "n", "", "name under which to register the task")
	registerCmd.Flags().Uint32P("block", "b", 0, "bytes per bitmap bit (0 for the daemon default)")
	registerCmd.Flags().StringP("mask", "m", "all", "event mask for the task")
	registerCmd.Flags().StringP("path", "p", "", "root of the namespace of interest")

	deregisterCmd.Flags().Uint32P("id", "i", 0, "task ID")

	for _, c := range []*cobra.Command{markCmd, unmarkCmd, checkCmd} {
		c.Flags().Uint32P("id", "i", 0, "task ID")
		c.Flags().Uint64P("offset", "o", 0, "start of the range in bytes")
		c.Flags().Uint64P("len", "l", 0, "length of the range in bytes")
	}

	fetchCmd.Flags().Uint32P("id", "i", 0, "task ID")
	fetchCmd.Flags().IntP("count", "n", defaultFetchCount,
		fmt.Sprintf("number of events (max %d)", event.MaxFetch))
	fetchCmd.Flags().Duration("wait", 0, "wait up to this long for an event")
}

func taskID(cmd *cobra.Command) (uint32, error) {
	id, _ := cmd.Flags().GetUint32("id") //nolint:errcheck // flag name is hardcoded
	if id == 0 {
		return 0, errors.New("a task ID (-i) is required")
	}
	return id, nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("name")    //nolint:errcheck // flag name is hardcoded
	block, _ := cmd.Flags().GetUint32("block")  //nolint:errcheck // flag name is hardcoded
	maskStr, _ := cmd.Flags().GetString("mask") //nolint:errcheck // flag name is hardcoded
	scope, _ := cmd.Flags().GetString("path")   //nolint:errcheck // flag name is hardcoded

	if name == "" {
		return errors.New("a task name (-n) is required")
	}
	if len(name) > task.MaxNameLen {
		return fmt.Errorf("invalid name (%d bytes, max %d)", len(name), task.MaxNameLen)
	}
	mask, err := event.ParseKind(maskStr)
	if err != nil {
		return fmt.Errorf("invalid -m: %w", err)
	}
	scope, err = resolveScope(scope)
	if err != nil {
		return fmt.Errorf("invalid -p: %w", err)
	}

	return withClient(cmd, func(ctx context.Context, c *proto.Client) error {
		id, err := c.Register(ctx, task.RegisterRequest{
			Name:        name,
			Scope:       scope,
			Granularity: block,
			Mask:        mask,
		})
		if err != nil {
			return failed(fmt.Errorf("registering task '%s': %w", name, err))
		}
		report().Registered(name, id)
		return nil
	})
}

// resolveScope makes a scope path absolute against the client's working
// directory. The daemon runs elsewhere and only accepts absolute scopes.
func resolveScope(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	return filepath.Abs(p)
}

func runDeregister(cmd *cobra.Command, _ []string) error {
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	return withClient(cmd, func(ctx context.Context, c *proto.Client) error {
		if err := c.Deregister(ctx, id); err != nil {
			return failed(err)
		}
		report().Deregistered(id)
		return nil
	})
}

func runRange(
	cmd *cobra.Command,
	fn func(ctx context.Context, c *proto.Client, id uint32, off, length uint64) error,
) error {
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	off, _ := cmd.Flags().GetUint64("offset") //nolint:errcheck // flag name is hardcoded
	length, _ := cmd.Flags().GetUint64("len") //nolint:errcheck // flag name is hardcoded
	if length == 0 {
		return errors.New("a non-zero length (-l) is required")
	}

	return withClient(cmd, func(ctx context.Context, c *proto.Client) error {
		if err := fn(ctx, c, id, off, length); err != nil {
			return failed(err)
		}
		return nil
	})
}

func runFetch(cmd *cobra.Command, _ []string) error {
	id, err := taskID(cmd)
	if err != nil {
		return err
	}
	count, _ := cmd.Flags().GetInt("count")    //nolint:errcheck // flag name is hardcoded
	wait, _ := cmd.Flags().GetDuration("wait") //nolint:errcheck // flag name is hardcoded
	if count <= 0 || count > event.MaxFetch {
		return fmt.Errorf("event count must be between 1 and %d, got %d", event.MaxFetch, count)
	}
	if wait < 0 {
		return fmt.Errorf("--wait must not be negative, got %s", wait)
	}
	// The request deadline must outlast the long poll.
	if wait > 0 && opts.timeout < wait+5*time.Second {
		opts.timeout = wait + 5*time.Second
	}

	return withClient(cmd, func(ctx context.Context, c *proto.Client) error {
		batch, err := c.Fetch(ctx, id, count, wait)
		if err != nil {
			return failed(err)
		}
		report().Fetched(batch)
		return nil
	})
}

func runList(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(ctx context.Context, c *proto.Client) error {
		infos, err := c.List(ctx)
		if err != nil {
			return failed(err)
		}
		report().Tasks(infos)
		return nil
	})
}

func runPing(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(ctx context.Context, c *proto.Client) error {
		start := time.Now()
		if err := c.Ping(ctx, uint64(start.UnixNano())); err != nil { //nolint:gosec // G115: sequence is opaque
			return failed(err)
		}
		info := c.HandshakeInfo()
		fmt.Fprintf(cmd.OutOrStdout(), "daemon reachable in %s (protocol %d, block %d, queue %d, compress %t)\n",
			time.Since(start).Round(time.Microsecond), info.Version, info.Granularity, info.QueueCapacity, info.Compress)
		return nil
	})
}
