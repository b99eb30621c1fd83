package app

import (
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"

	"xplore/pkg/logging"
)

// inputCompleter offers the prompt commands for tab completion.
var inputCompleter = readline.NewPrefixCompleter(
	readline.PcItem(":home"),
	readline.PcItem(":mentions"),
	readline.PcItem(":bookmarks"),
	readline.PcItem(":user"),
	readline.PcItem(":search"),
	readline.PcItem(":open"),
	readline.PcItem(":auth"),
	readline.PcItem(":help"),
	readline.PcItem(":quit"),
)

// InputReader is the prompt producer. It reads lines on its own
// goroutine and delivers them over a channel the bus consumes from.
type InputReader struct {
	rl    *readline.Instance
	lines chan string
}

// NewInputReader creates a readline-backed prompt with history under
// the user's config directory.
func NewInputReader(prompt string) (*InputReader, error) {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".config", "xplore", "history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		AutoComplete:    inputCompleter,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &InputReader{
		rl:    rl,
		lines: make(chan string),
	}, nil
}

// Lines is the channel the reader delivers on. It closes when input
// ends.
func (r *InputReader) Lines() <-chan string {
	return r.lines
}

// Run reads until EOF or an interrupt on an empty line, then closes the
// line channel. Call it on its own goroutine.
func (r *InputReader) Run() {
	defer close(r.lines)
	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return
			}
			continue
		} else if err == io.EOF {
			return
		} else if err != nil {
			logging.Warn("App", "Prompt read failed: %v", err)
			return
		}
		r.lines <- line
	}
}

// Close releases the terminal.
func (r *InputReader) Close() error {
	return r.rl.Close()
}
