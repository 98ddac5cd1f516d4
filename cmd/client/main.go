package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"whatsapp-clone/client"
	"whatsapp-clone/errors"
	"whatsapp-clone/infrastructure/grpc/api"
	"whatsapp-clone/projection"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Exit codes for the client.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type command struct {
	usage string
	// stream commands run until interrupted instead of using the call timeout
	stream bool
	run    func(ctx context.Context, c *cli, args []string) error
}

var commands = map[string]command{
	"register": {usage: "register -email <email> -password <password> [-name <username>]", run: register},
	"login":    {usage: "login -email <email> -password <password>", run: login},
	"chats":    {usage: "chats [-q <query>]", run: listChats},
	"follow":   {usage: "follow [-q <query>]", stream: true, run: followChats},
	"new":      {usage: "new <recipient email>", run: newChat},
	"open":     {usage: "open <chat id>", run: openChat},
	"send":     {usage: "send [-photo <url>] <chat id> <text>", run: send},
	"history":  {usage: "history [-cursor <cursor>] <chat id>", run: history},
	"watch":    {usage: "watch <chat id>", stream: true, run: watch},
	"delete":   {usage: "delete <chat id>", run: deleteChat},
	"profile":  {usage: "profile [email]", run: profile},
}

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, color.FgRed.Render("Error: "+err.Error()))
	}
	os.Exit(code)
}

func run(args []string) (int, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if !cfg.Colours {
		color.Disable()
	}
	if len(args) == 0 {
		printUsage(os.Stderr)
		return exitConfig, nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		printUsage(os.Stderr)
		return exitConfig, fmt.Errorf("unknown command %q", args[0])
	}

	conn, err := client.Dial(cfg.ServerAddr)
	if err != nil {
		return exitRuntime, err
	}
	defer conn.Close()

	c := &cli{client: conn, cfg: cfg, out: os.Stdout}
	if err := c.loadSession(); err != nil {
		return exitConfig, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if !cmd.stream {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err := cmd.run(ctx, c, args[1:]); err != nil {
		if stderrors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "usage: chat "+cmd.usage)
			return exitConfig, nil
		}
		return exitRuntime, err
	}
	return exitOK, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: chat <command> [arguments]")
	for _, name := range []string{"register", "login", "chats", "follow", "new", "open",
		"send", "history", "watch", "delete", "profile"} {
		fmt.Fprintln(w, "  "+commands[name].usage)
	}
}

var errUsage = fmt.Errorf("usage")

type cli struct {
	client *client.Client
	cfg    Config
	out    io.Writer
}

func (c *cli) loadSession() error {
	data, err := os.ReadFile(c.cfg.SessionFile)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		return fmt.Errorf("malformed session file %s", c.cfg.SessionFile)
	}
	c.client.Resume(lines[1], lines[0])
	return nil
}

func (c *cli) saveSession() error {
	token, email := c.client.Session()
	return os.WriteFile(c.cfg.SessionFile, []byte(email+"\n"+token+"\n"), 0o600)
}

func (c *cli) header(text string) {
	fmt.Fprintln(c.out, color.New(color.BgBlack, color.FgGreen).Render("  "+text+"  "))
}

func register(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil || *email == "" || *password == "" {
		return errUsage
	}
	if err := c.client.Register(ctx, *email, *password, *name); err != nil {
		return err
	}
	fmt.Fprintln(c.out, color.FgGreen.Render("Registered as "+*email))
	return c.saveSession()
}

func login(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil || *email == "" || *password == "" {
		return errUsage
	}
	if err := c.client.Login(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Fprintln(c.out, color.FgGreen.Render("Signed in as "+*email))
	return c.saveSession()
}

func listChats(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("chats", flag.ContinueOnError)
	query := fs.String("q", "", "filter on participant emails")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	chats, err := c.client.ListChats(ctx, *query)
	if err != nil {
		return err
	}
	c.renderChats(chats)
	return nil
}

func followChats(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("follow", flag.ContinueOnError)
	query := fs.String("q", "", "filter on participant emails")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	stream, err := c.client.WatchChats(ctx, *query)
	if err != nil {
		return err
	}
	for {
		snapshot, err := stream.Recv()
		if err != nil {
			return endOfStream(ctx, err)
		}
		c.header("Chats at " + time.Now().Format("15:04:05"))
		c.renderChats(snapshot.Chats)
	}
}

func newChat(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	created, err := c.client.CreateChat(ctx, args[0])
	var rejection *errors.RemoteRejection
	if stderrors.As(err, &rejection) && rejection.ChatID != "" {
		fmt.Fprintln(c.out, color.FgYellow.Render("Chat already exists: "+rejection.ChatID))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %s with %s\n", color.FgGreen.Render("Chat created"), created.ID, created.Label)
	return nil
}

func openChat(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	found, err := c.client.GetChat(ctx, args[0])
	if err != nil {
		return err
	}
	c.header(found.Label)
	if found.RecipientProfile != nil {
		c.renderProfile(*found.RecipientProfile)
	}
	messages, _, err := c.client.GetMessages(ctx, found.ID, nil)
	if err != nil {
		return err
	}
	c.renderMessages(messages)
	return nil
}

func send(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	photo := fs.String("photo", "", "photo url of the sender")
	if err := fs.Parse(args); err != nil || fs.NArg() < 2 {
		return errUsage
	}
	content := strings.Join(fs.Args()[1:], " ")
	if err := c.client.SendMessage(ctx, fs.Arg(0), content, *photo); err != nil {
		return err
	}
	fmt.Fprintln(c.out, color.FgGreen.Render("Sent"))
	return nil
}

func history(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	cursor := fs.String("cursor", "", "cursor of a previous page")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	var from *string
	if *cursor != "" {
		from = cursor
	}
	messages, next, err := c.client.GetMessages(ctx, fs.Arg(0), from)
	if err != nil {
		return err
	}
	c.renderMessages(messages)
	if next != nil {
		fmt.Fprintln(c.out, color.FgGray.Render("Older messages: -cursor "+*next))
	}
	return nil
}

func watch(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	// The stream is opened before the history is read, the timeline drops what both deliver
	stream, err := c.client.WatchChat(ctx, args[0])
	if err != nil {
		return err
	}
	_, me := c.client.Session()
	timeline := projection.NewTimeline(me)
	history, _, err := c.client.GetMessages(ctx, args[0], nil)
	if err != nil {
		return err
	}
	c.header("Watching " + args[0])
	c.renderMessages(timeline.Add(history...))
	for {
		evt, err := stream.Recv()
		if err != nil {
			return endOfStream(ctx, err)
		}
		if evt.Deleted {
			fmt.Fprintln(c.out, color.FgYellow.Render("Chat deleted"))
			return nil
		}
		if evt.Message != nil {
			c.renderMessages(timeline.Add(*evt.Message))
		}
	}
}

func deleteChat(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := c.client.DeleteChat(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, color.FgGreen.Render("Chat deleted"))
	return nil
}

func profile(ctx context.Context, c *cli, args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	email := ""
	if len(args) == 1 {
		email = args[0]
	}
	p, err := c.client.GetProfile(ctx, email)
	if err != nil {
		return err
	}
	c.renderProfile(p)
	return nil
}

// endOfStream treats an interruption by the user as a normal end.
func endOfStream(ctx context.Context, err error) error {
	if stderrors.Is(err, io.EOF) || ctx.Err() != nil {
		return nil
	}
	return errors.FromGRPCError(err)
}

func (c *cli) table(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func (c *cli) renderChats(chats []api.Chat) {
	table := c.table("Chat ID", "Contact", "Email", "Presence", "Last message")
	for _, item := range chats {
		presence := ""
		if item.RecipientProfile != nil {
			presence = presenceOf(*item.RecipientProfile)
		}
		last := ""
		if item.LastMessage != nil {
			last = truncate(item.LastMessage.Content, 40)
		}
		table.Append([]string{item.ID, item.Label, item.Recipient, presence, last})
	}
	table.Render()
}

func (c *cli) renderMessages(messages []api.Message) {
	for _, m := range messages {
		c.printMessage(m)
	}
}

func (c *cli) printMessage(m api.Message) {
	_, me := c.client.Session()
	author := color.FgCyan.Render(m.Sender)
	if m.Sender == me {
		author = color.FgGreen.Render("me")
	}
	fmt.Fprintf(c.out, "[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04:05"), author, m.Content)
}

func (c *cli) renderProfile(p api.Profile) {
	table := c.table("Email", "Username", "Presence", "Photo")
	table.Append([]string{p.Email, p.Username, presenceOf(p), p.PhotoURL})
	table.Render()
}

func presenceOf(p api.Profile) string {
	switch {
	case p.Online:
		return color.FgGreen.Render("online")
	case p.LastSeen != nil:
		return "last seen " + p.LastSeen.Local().Format("2006-01-02 15:04")
	default:
		return "offline"
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
