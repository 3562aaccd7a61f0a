package app

import (
	"fmt"
	"strings"
	"time"

	"pointer/internal/fileutil"
)

const helpText = `Commands:
  /help            show this help
  /config          show the active configuration
  /status          show session and context status
  /info            show session statistics
  /mode            toggle auto-run of tool calls
  /dryrun          toggle dry-run mode
  /context [query] show the workspace summary, or search it
  /refresh         rebuild the workspace index
  /chats           list saved chats
  /save            save the current chat
  /load <id>       load a saved chat
  /delete <id>     delete a saved chat
  /new [title]     start a new chat
  /clear           clear the current chat history
  /exit            quit`

// handleCommand runs one slash command. It returns true when the loop
// should exit.
func (a *App) handleCommand(line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/help":
		fmt.Fprintln(a.out, helpText)

	case "/config":
		a.showConfig()

	case "/status":
		a.showStatus()

	case "/info":
		a.showInfo()

	case "/mode":
		a.cfg.Mode.AutoRunTools = !a.cfg.Mode.AutoRunTools
		if a.cfg.Mode.AutoRunTools {
			fmt.Fprintln(a.out, "tool calls now run automatically")
		} else {
			fmt.Fprintln(a.out, "tool calls now require confirmation")
		}

	case "/dryrun":
		a.cfg.Mode.DryRun = !a.cfg.Mode.DryRun
		fmt.Fprintf(a.out, "dry-run mode: %v\n", a.cfg.Mode.DryRun)

	case "/context":
		if arg == "" {
			fmt.Fprintln(a.out, a.cache.ContextForPrompt())
			break
		}
		matches := a.cache.Search(arg)
		if len(matches) == 0 {
			fmt.Fprintf(a.out, "no indexed files match %q\n", arg)
			break
		}
		for _, f := range matches {
			fmt.Fprintf(a.out, "  %s (%s)\n", f.RelPath, fileutil.FormatSize(f.Size))
		}

	case "/refresh":
		a.cache.Refresh()
		fmt.Fprintf(a.out, "indexed %d files\n", a.cache.Len())

	case "/chats":
		a.listChats()

	case "/save":
		if a.store.Active() == nil {
			fmt.Fprintln(a.out, "nothing to save")
			break
		}
		if err := a.store.Save(); err != nil {
			a.printError(err)
			break
		}
		fmt.Fprintf(a.out, "saved %s\n", a.store.Active().ID)

	case "/load":
		if arg == "" {
			fmt.Fprintln(a.out, "usage: /load <id>")
			break
		}
		s, err := a.store.Load(arg)
		if err != nil {
			a.printError(err)
			break
		}
		fmt.Fprintf(a.out, "loaded %q (%d messages)\n", s.Title, s.Len())

	case "/delete":
		if arg == "" {
			fmt.Fprintln(a.out, "usage: /delete <id>")
			break
		}
		if err := a.store.Delete(arg); err != nil {
			a.printError(err)
			break
		}
		fmt.Fprintln(a.out, "deleted")

	case "/new":
		s := a.store.New(arg)
		fmt.Fprintf(a.out, "started %q\n", s.Title)

	case "/clear":
		if s := a.store.Active(); s != nil {
			s.Clear()
		}
		fmt.Fprintln(a.out, "history cleared")

	case "/exit", "/quit":
		return true

	default:
		fmt.Fprintf(a.out, "unknown command %s (try /help)\n", cmd)
	}
	return false
}

func (a *App) showConfig() {
	fmt.Fprintf(a.out, "base_url:    %s\n", a.cfg.API.BaseURL)
	fmt.Fprintf(a.out, "model:       %s\n", a.client.Model())
	fmt.Fprintf(a.out, "temperature: %.2f\n", a.cfg.API.Temperature)
	fmt.Fprintf(a.out, "max_tokens:  %d\n", a.cfg.API.MaxTokens)
	fmt.Fprintf(a.out, "auto_run:    %v\n", a.cfg.Mode.AutoRunTools)
	fmt.Fprintf(a.out, "dry_run:     %v\n", a.cfg.Mode.DryRun)
	fmt.Fprintf(a.out, "sessions:    %s\n", a.store.Dir())
}

func (a *App) showStatus() {
	s := a.store.Active()
	if s == nil {
		fmt.Fprintln(a.out, "no active chat")
	} else {
		fmt.Fprintf(a.out, "chat:    %q (%s)\n", s.Title, s.ID)
		fmt.Fprintf(a.out, "messages: %d\n", s.Len())
		fmt.Fprintf(a.out, "tokens:   %d\n", s.Tokens())
	}
	fmt.Fprintf(a.out, "indexed files: %d (refreshed %s)\n",
		a.cache.Len(), a.cache.LastRefresh().Format("15:04:05"))
	fmt.Fprintf(a.out, "tools: %s\n", strings.Join(a.registry.Names(), ", "))
}

func (a *App) showInfo() {
	fmt.Fprintf(a.out, "uptime:   %s\n", time.Since(a.started).Round(time.Second))
	if s := a.store.Active(); s != nil && s.Len() > 0 {
		fmt.Fprintf(a.out, "messages: %d\n", s.Len())
		fmt.Fprintf(a.out, "tokens:   %d (avg %.1f per message)\n",
			s.Tokens(), float64(s.Tokens())/float64(s.Len()))
	} else {
		fmt.Fprintln(a.out, "messages: 0")
	}
	fmt.Fprintf(a.out, "model:    %s\n", a.client.Model())
	fmt.Fprintf(a.out, "endpoint: %s\n", a.cfg.API.BaseURL)
}

func (a *App) listChats() {
	infos, err := a.store.List()
	if err != nil {
		a.printError(err)
		return
	}
	if len(infos) == 0 {
		fmt.Fprintln(a.out, "no saved chats")
		return
	}
	for _, info := range infos {
		fmt.Fprintf(a.out, "  %s  %-30q  %d msg, %d tokens  %s\n",
			info.ID, info.Title, info.Messages, info.TotalTokens,
			info.LastModified.Format("2006-01-02 15:04"))
	}
}
