package cmds

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-go-golems/godbot/pkg/bot"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tcnksm/go-input"
	"golang.org/x/sync/errgroup"
)

const defaultAuthor = "User"

const chatHelp = `/reset                     forget the current conversation
/reset-all                 forget the seed dialogue and the current conversation
/context [TEXT]            show or replace the persona context
/name NAME                 rename the bot
/seed PROMPT => RESPONSE   teach the bot an exchange it never forgets
/config                    describe the bot
/save [FILE]               save the bot config (default: --bot-config)
/quit                      leave
`

func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			author, err := cmd.Flags().GetString("author")
			if err != nil {
				return err
			}

			cfg, err := loadBotConfig()
			if err != nil {
				return err
			}
			identity, err := newIdentity(cfg, true)
			if err != nil {
				return err
			}

			interactive := isatty.IsTerminal(os.Stdin.Fd())
			var reader lineReader
			if interactive {
				reader = &ttyReader{ui: &input.UI{Writer: os.Stdout, Reader: os.Stdin}}
			} else {
				reader = newScanReader(os.Stdin)
			}

			s := &chatSession{
				identity: identity,
				author:   author,
				savePath: viper.GetString("bot-config"),
				reader:   reader,
				out:      cmd.OutOrStdout(),
			}
			if interactive && isatty.IsTerminal(os.Stdout.Fd()) {
				fmt.Fprintf(s.out, "Talking to %s. /help lists the commands.\n", identity.Botname())
			}

			return runChat(cmd.Context(), s)
		},
	}
	cmd.Flags().String("author", defaultAuthor, "Name the bot knows you by")
	return cmd
}

type lineReader interface {
	ReadLine(prompt string) (string, error)
}

type ttyReader struct {
	ui *input.UI
}

func (t *ttyReader) ReadLine(prompt string) (string, error) {
	return t.ui.Ask(prompt, &input.Options{
		HideOrder: true,
	})
}

// scanReader reads piped input, one message per line, without prompting.
type scanReader struct {
	scanner *bufio.Scanner
}

func newScanReader(r io.Reader) *scanReader {
	return &scanReader{scanner: bufio.NewScanner(r)}
}

func (s *scanReader) ReadLine(string) (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

type chatSession struct {
	identity *bot.Identity
	author   string
	savePath string
	reader   lineReader
	out      io.Writer
}

// runChat runs the session until /quit, end of input or an interrupt. An
// interrupt also cancels a generation in flight.
func runChat(ctx context.Context, s *chatSession) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer cancel()
		return s.run(ctx)
	})
	eg.Go(func() error {
		select {
		case sig := <-sigCh:
			log.Debug().Str("signal", sig.String()).Msg("interrupted, leaving chat")
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	return eg.Wait()
}

type readResult struct {
	line string
	err  error
}

// readLine gives up on cancel. The reader goroutine stays blocked on stdin
// until the process exits; a session is run once per process.
func (s *chatSession) readLine(ctx context.Context) (string, error) {
	ch := make(chan readResult, 1)
	go func() {
		line, err := s.reader.ReadLine(s.author + "> ")
		ch <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

func (s *chatSession) run(ctx context.Context) error {
	for {
		line, err := s.readLine(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, io.EOF) {
				log.Debug().Err(err).Msg("input closed")
			}
			return nil
		}

		quit, err := s.handleLine(ctx, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// handleLine answers a message or runs a slash command. It returns true when
// the session is over.
func (s *chatSession) handleLine(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if strings.HasPrefix(line, "/") {
		return s.handleCommand(line[1:])
	}

	response, err := s.identity.Respond(ctx, s.author, line)
	if err != nil {
		if ctx.Err() != nil {
			return true, nil
		}
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false, nil
	}
	fmt.Fprintf(s.out, "%s: %s\n", s.identity.Botname(), response)
	return false, nil
}

func (s *chatSession) handleCommand(line string) (bool, error) {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "quit", "exit":
		return true, nil

	case "help":
		fmt.Fprint(s.out, chatHelp)

	case "reset":
		s.identity.ResetLive()
		fmt.Fprintln(s.out, "Forgot the current conversation.")

	case "reset-all":
		s.identity.ResetAll()
		fmt.Fprintln(s.out, "Forgot the seed dialogue and the current conversation.")

	case "context":
		if rest == "" {
			fmt.Fprintln(s.out, s.identity.Context())
			break
		}
		s.identity.SetContext(rest)
		fmt.Fprintln(s.out, "Context updated.")

	case "name":
		if rest == "" {
			fmt.Fprintln(s.out, "usage: /name NAME")
			break
		}
		s.identity.SetBotname(rest)
		fmt.Fprintf(s.out, "I am now %s.\n", rest)

	case "seed":
		prompt, response, ok := strings.Cut(rest, "=>")
		prompt, response = strings.TrimSpace(prompt), strings.TrimSpace(response)
		if !ok || prompt == "" || response == "" {
			fmt.Fprintln(s.out, "usage: /seed PROMPT => RESPONSE")
			break
		}
		s.identity.SeedInteraction(s.author, prompt, response)
		fmt.Fprintln(s.out, "Seeded.")

	case "config":
		fmt.Fprint(s.out, s.identity.DescribeConfig())

	case "save":
		path := rest
		if path == "" {
			path = s.savePath
		}
		if path == "" {
			fmt.Fprintln(s.out, "usage: /save FILE (or start with --bot-config)")
			break
		}
		if err := bot.SaveConfigFile(path, s.identity.ExportConfig()); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			break
		}
		fmt.Fprintf(s.out, "Saved to %s.\n", path)

	default:
		fmt.Fprintf(s.out, "unknown command /%s, try /help\n", name)
	}

	return false, nil
}
