package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"messenger-lab/domain"
	"messenger-lab/errors"
	"messenger-lab/observability"
	"messenger-lab/repositories"
	"messenger-lab/services"
)

type repl struct {
	chat        *services.ChatService
	preferences *repositories.PreferenceRepository
	monitor     *observability.Monitor
	searchLimit int
	log         *slog.Logger
}

func newREPL(chat *services.ChatService, preferences *repositories.PreferenceRepository,
	monitor *observability.Monitor, searchLimit int, log *slog.Logger) *repl {
	return &repl{
		chat:        chat,
		preferences: preferences,
		monitor:     monitor,
		searchLimit: searchLimit,
		log:         log,
	}
}

// Run reads one line per turn, dispatches the first token as the command,
// and loops until EOF or exit. Command handlers report their own failures;
// the loop itself never dies on user input.
func (r *repl) Run(scanner *bufio.Scanner) {
	ctx := context.Background()
	r.printHelp()

	for {
		fmt.Print(r.prompt())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			r.printHelp()
		case "login":
			r.login(args)
		case "register":
			r.register(args)
		case "users":
			r.users(strings.Join(args, " "))
		case "open":
			r.open(args)
		case "close":
			r.chat.CloseChat()
		case "send":
			r.send(ctx, strings.Join(args, " "))
		case "history":
			r.history()
		case "find":
			r.find(ctx, strings.Join(args, " "))
		case "stats":
			r.stats()
		case "status":
			r.status()
		case "theme":
			r.theme()
		case "logout":
			if err := r.chat.Logout(); err != nil {
				r.fail(err)
			}
		case "exit", "quit":
			return
		default:
			color.Yellow.Printf("unknown command %q, try help\n", cmd)
		}
	}
}

func (r *repl) prompt() string {
	session := r.chat.Session()
	switch session.Phase() {
	case domain.ChatOpen:
		return color.Green.Sprintf("%s @ %s > ", session.Username, session.Counterpart)
	case domain.LoggedIn:
		return color.Green.Sprintf("%s > ", session.Username)
	default:
		return color.Gray.Sprint("anonymous > ")
	}
}

func (r *repl) printHelp() {
	if r.chat.Session().IsLoggedIn() {
		fmt.Println("Available commands: users [query], open <user>, close, send <text>, history, find <terms>, stats, status, theme, logout, exit")
		return
	}
	fmt.Println("Available commands: login <user> <password>, register <user> <password>, exit")
}

func (r *repl) fail(err error) {
	if domain.IsUserFacing(err) {
		color.Red.Println(err.Error())
		return
	}
	r.log.Error("command failed", "error", err)
	color.Red.Println("internal error, see logs")
}

func (r *repl) login(args []string) {
	if len(args) != 2 {
		color.Yellow.Println("usage: login <user> <password>")
		return
	}
	if err := r.chat.Login(args[0], args[1]); err != nil {
		r.fail(err)
		return
	}
	color.Green.Printf("welcome, %s\n", args[0])
}

func (r *repl) register(args []string) {
	if len(args) != 2 {
		color.Yellow.Println("usage: register <user> <password>")
		return
	}
	if err := r.chat.Register(args[0], args[1]); err != nil {
		r.fail(err)
		return
	}
	color.Green.Println("account created, now log in")
}

func (r *repl) users(query string) {
	counterparts, err := r.chat.ListCounterparts(query)
	if err != nil {
		r.fail(err)
		return
	}
	if len(counterparts) == 0 {
		fmt.Println("no users found")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Username", "Kind"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, c := range counterparts {
		kind := "registered"
		if c.Demo {
			kind = "demo"
		}
		table.Append([]string{c.Username, kind})
	}
	table.Render()
}

func (r *repl) open(args []string) {
	if len(args) != 1 {
		color.Yellow.Println("usage: open <user>")
		return
	}
	if err := r.chat.OpenChat(args[0]); err != nil {
		r.fail(err)
		return
	}
	r.history()
}

func (r *repl) send(ctx context.Context, text string) {
	message, err := r.chat.SendMessage(ctx, text)
	if err != nil {
		r.fail(err)
		return
	}
	r.printMessage(message)
}

func (r *repl) history() {
	counterpart := r.chat.Session().Counterpart
	if counterpart == "" {
		r.fail(errors.ErrNoActiveChat)
		return
	}
	messages, err := r.chat.LoadMessages(counterpart)
	if err != nil {
		r.fail(err)
		return
	}
	if len(messages) == 0 {
		fmt.Printf("start the conversation with %s, messages stay on this machine\n", counterpart)
		return
	}
	for _, message := range messages {
		r.printMessage(message)
	}
}

func (r *repl) printMessage(message domain.Message) {
	stamp := message.At.Local().Format("15:04")
	line := fmt.Sprintf("[%s] %s: %s", stamp, message.Sender, message.Text)
	if message.Sender == r.chat.Session().Username {
		color.Cyan.Println(line)
		return
	}
	fmt.Println(line)
}

func (r *repl) find(ctx context.Context, terms string) {
	if strings.TrimSpace(terms) == "" {
		color.Yellow.Println("usage: find <terms>")
		return
	}
	results, err := r.chat.SearchMessages(ctx, terms, r.searchLimit)
	if err != nil {
		r.fail(err)
		return
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, message := range results {
		r.printMessage(message)
	}
}

func (r *repl) stats() {
	digest, err := r.chat.Stats()
	if err != nil {
		r.fail(err)
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Sender", "Messages"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for sender, count := range digest.BySender {
		table.Append([]string{sender, fmt.Sprintf("%d", count)})
	}
	table.Render()
	fmt.Printf("total: %d, dominant language: %s\n", digest.Total, digest.DominantLanguage())
}

func (r *repl) status() {
	s := r.monitor.Snapshot()
	fmt.Printf("rss: %.1f MB, cpu: %.1f%%, alloc: %d MB, goroutines: %d, gc: %d, uptime: %s\n",
		s.RSSMb, s.CPUPercent, s.AllocMemMb, s.Goroutines, s.NumGC, s.Uptime)
}

func (r *repl) theme() {
	theme, err := r.preferences.ToggleTheme()
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Printf("theme is now %s\n", theme)
}
