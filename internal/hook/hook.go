// Package hook spawns external hook processes on every bot event,
// positional-encoding the event's fields as argv (spec.md §6.4),
// grounded on plugins/links/requester.cpp's subprocess-invocation
// style and an os/exec-based daemonize path.
package hook

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/irccd/irccd/internal/event"
	"github.com/rs/zerolog"
)

// Hook is one [hook] config entry: a name and the executable to run.
type Hook struct {
	Name string
	Exec string
}

// GracePeriod bounds how long Run waits for a hook to exit once the
// context is cancelled (spec.md §5, "a short grace period").
const GracePeriod = 3 * time.Second

// Run spawns the hook for ev: "exec-path event-name arg1 arg2 ...".
// Stdin is closed; stdout/stderr are routed to log as info/warning.
// The exit status is logged but never returned as an error: a hook
// failure must never affect event processing (spec.md §7).
func Run(ctx context.Context, h Hook, ev event.Event, log zerolog.Logger) {
	argv := append([]string{ev.Name()}, ArgsFor(ev)...)
	// Runs against context.Background() rather than ctx directly: a
	// bot shutdown must give the hook GracePeriod to exit on its own
	// before being reaped, not be killed the instant ctx is cancelled
	// (spec.md §5, "hooks are allowed to finish (bounded by a short
	// grace period) then reaped").
	cmd := exec.CommandContext(context.Background(), h.Exec, argv...)
	cmd.Stdin = nil

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Warn().Err(err).Str("hook", h.Name).Msg("failed to attach stdout")
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		log.Warn().Err(err).Str("hook", h.Name).Msg("failed to attach stderr")
		return
	}

	if err := cmd.Start(); err != nil {
		log.Warn().Err(err).Str("hook", h.Name).Msg("failed to spawn hook")
		return
	}

	go logLines(stdout, func() *zerolog.Event { return log.Info().Str("hook", h.Name) })
	go logLines(stderr, func() *zerolog.Event { return log.Warn().Str("hook", h.Name) })

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			log.Warn().Err(err).Str("hook", h.Name).Msg("hook exited with error")
			return
		}
		log.Debug().Str("hook", h.Name).Msg("hook exited")
	case <-ctx.Done():
		select {
		case err := <-done:
			if err != nil {
				log.Warn().Err(err).Str("hook", h.Name).Msg("hook exited with error")
			}
		case <-time.After(GracePeriod):
			log.Warn().Str("hook", h.Name).Msg("hook exceeded shutdown grace period, killing")
			cmd.Process.Kill()
			<-done
		}
	}
}

func logLines(r io.Reader, newEvent func() *zerolog.Event) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		newEvent().Msg(scanner.Text())
	}
}

// ArgsFor stringifies ev's fields in §3.2 declaration order: server is
// represented by its id, lists are comma-joined.
func ArgsFor(ev event.Event) []string {
	switch e := ev.(type) {
	case event.Connect:
		return []string{e.Server()}
	case event.Disconnect:
		return []string{e.Server()}
	case event.Invite:
		return []string{e.Server(), e.Origin(), e.Channel(), e.Target}
	case event.Join:
		return []string{e.Server(), e.Origin(), e.Channel()}
	case event.Kick:
		return []string{e.Server(), e.Origin(), e.Channel(), e.Target, e.Reason}
	case event.Message:
		return []string{e.Server(), e.Origin(), e.Channel(), e.Text}
	case event.Command:
		return []string{e.Server(), e.Origin(), e.Channel(), e.Text}
	case event.Me:
		return []string{e.Server(), e.Origin(), e.Channel(), e.Text}
	case event.Mode:
		return []string{e.Server(), e.Origin(), e.Channel(), e.ModeString, e.Limit, e.User, e.Mask}
	case event.Names:
		return []string{e.Server(), e.Channel(), strings.Join(e.Nicknames, ",")}
	case event.Nick:
		return []string{e.Server(), e.Origin(), e.New}
	case event.Notice:
		return []string{e.Server(), e.Origin(), e.Channel(), e.Text}
	case event.Part:
		return []string{e.Server(), e.Origin(), e.Channel(), e.Reason}
	case event.Topic:
		return []string{e.Server(), e.Origin(), e.Channel(), e.Text}
	case event.Whois:
		return []string{e.Server(), e.Nick, e.User, e.Host, e.RealName, strings.Join(e.Channels, ",")}
	default:
		return nil
	}
}
