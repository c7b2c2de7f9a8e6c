package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lumagram/lumagram/internal/lumagram"
)

// Platform-specific files override these for extra signals (Ctrl+Z on unix).
var notifyExtraSignals = func(sigChan chan<- os.Signal) {}
var getShutdownMessage = func(sig os.Signal) string {
	return "Received interrupt signal, stopping..."
}

var (
	flagConfig  string
	flagAPIBase string
	flagVerbose bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "lumagram",
		Short: "Lumagram - photo sharing from your terminal",
		Long: `A terminal client for the Lumagram photo-sharing backend.

The client provides:
  - Home feed with likes and comments
  - 24-hour stories with a step-through viewer
  - Direct messages with live polling
  - Follow suggestions and profile pages
  - Post and story uploads`,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", lumagram.DefaultConfigPath(), "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&flagAPIBase, "api", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(createSignupCmd())
	rootCmd.AddCommand(createLoginCmd())
	rootCmd.AddCommand(createLogoutCmd())
	rootCmd.AddCommand(createStatusCmd())
	rootCmd.AddCommand(createFeedCmd())
	rootCmd.AddCommand(createLikeCmd())
	rootCmd.AddCommand(createCommentCmd())
	rootCmd.AddCommand(createStoriesCmd())
	rootCmd.AddCommand(createPeopleCmd())
	rootCmd.AddCommand(createFollowCmd())
	rootCmd.AddCommand(createProfileCmd())
	rootCmd.AddCommand(createCreateCmd())
	rootCmd.AddCommand(createMessagesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything a command needs.
type app struct {
	cfg    *lumagram.Config
	client *lumagram.Client
	render *lumagram.Renderer
	log    zerolog.Logger
}

func buildApp() *app {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	cfg, err := lumagram.LoadConfig(flagConfig)
	if err != nil {
		color.Red("❌ Failed to load config: %v", err)
		os.Exit(1)
	}
	if flagAPIBase != "" {
		cfg.APIBase = flagAPIBase
		cfg.AssetBase = flagAPIBase
	}
	if flagVerbose {
		cfg.Verbose = true
	}

	jar, err := lumagram.LoadCookies(cfg.StateDir, cfg.APIBase)
	if err != nil {
		color.Red("❌ Failed to restore session: %v", err)
		os.Exit(1)
	}

	client := lumagram.NewClient(cfg, jar, log)
	return &app{
		cfg:    cfg,
		client: client,
		render: lumagram.NewRenderer(os.Stdout, cfg.AssetBase),
		log:    log,
	}
}

// saveSession persists the cookie jar after calls that may rotate it.
func (a *app) saveSession() {
	if err := lumagram.SaveCookies(a.cfg.StateDir, a.client.Jar(), a.client.BaseURL()); err != nil {
		a.log.Warn().Err(err).Msg("persisting session failed")
	}
}

func fail(err error) {
	if errors.Is(err, lumagram.ErrNotLoggedIn) {
		color.Red("❌ Not logged in. Run 'lumagram login <username>' first.")
		os.Exit(1)
	}
	color.Red("❌ %v", err)
	os.Exit(1)
}

func parseID(arg, what string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		color.Red("❌ Invalid %s: %s", what, arg)
		os.Exit(1)
	}
	return id
}

func createSignupCmd() *cobra.Command {
	var form lumagram.SignupForm

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a new account",
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			auth := lumagram.NewAuthController(a.client, a.cfg.StateDir, a.log)
			user, verrs, err := auth.Signup(context.Background(), form)
			if err != nil {
				fail(err)
			}
			if len(verrs) > 0 {
				for _, ve := range verrs {
					color.Red("❌ %s: %s", ve.Field, ve.Message)
				}
				os.Exit(1)
			}
			name := form.Username
			if user != nil {
				name = user.Username
			}
			color.Green("✅ Account %s created. Run 'lumagram login' to sign in.", name)
		},
	}

	cmd.Flags().StringVar(&form.Username, "username", "", "Username (3-30 chars, letters, digits, . and _)")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (8-128 chars)")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm", "", "Password confirmation")
	cmd.Flags().StringVar(&form.FullName, "full-name", "", "Full name")
	cmd.Flags().StringVar(&form.Bio, "bio", "", "Profile bio (optional)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("confirm")
	cmd.MarkFlagRequired("full-name")

	return cmd
}

func createLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and store the session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			auth := lumagram.NewAuthController(a.client, a.cfg.StateDir, a.log)
			info, err := auth.Login(context.Background(), args[0], password)
			if err != nil {
				fail(err)
			}
			color.Green("✅ Logged in as %s", info.Username)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.MarkFlagRequired("password")

	return cmd
}

func createLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			auth := lumagram.NewAuthController(a.client, a.cfg.StateDir, a.log)
			if err := auth.Logout(context.Background()); err != nil {
				fail(err)
			}
			color.Green("✅ Logged out")
		},
	}
}

func createStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			auth := lumagram.NewAuthController(a.client, a.cfg.StateDir, a.log)
			info, err := auth.Session(context.Background())
			if err != nil {
				fail(err)
			}
			a.render.Session(info)
		},
	}
}

func createFeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "Show your home feed",
		Long:  "Show posts from people you follow plus your own, newest first.",
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			feed := lumagram.NewFeedController(a.client, a.log)
			stories := lumagram.NewStoryController(a.client, a.log)

			tray, err := stories.Load(context.Background())
			if err == nil && len(tray) > 0 {
				if _, err := stories.LoadSelf(context.Background()); err != nil {
					a.log.Debug().Err(err).Msg("loading own profile for the tray failed")
				}
				a.render.StoryTray(stories.Self(), tray, time.Now())
				fmt.Println()
			}

			posts, err := feed.Load(context.Background())
			if err != nil {
				fail(err)
			}
			a.render.Feed(posts, time.Now())
			a.saveSession()
		},
	}
}

func createLikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like or unlike a post",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			postID := parseID(args[0], "post id")
			feed := lumagram.NewFeedController(a.client, a.log)
			res, err := feed.ToggleLike(context.Background(), postID)
			if err != nil {
				fail(err)
			}
			if res.IsLiked {
				color.Green("✅ Liked post %d (%s likes)", postID, lumagram.FormatCount(res.LikesCount))
			} else {
				color.Yellow("Removed like from post %d (%s likes)", postID, lumagram.FormatCount(res.LikesCount))
			}
		},
	}
}

func createCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <text>...",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			postID := parseID(args[0], "post id")
			text := strings.Join(args[1:], " ")
			feed := lumagram.NewFeedController(a.client, a.log)
			res, err := feed.AddComment(context.Background(), postID, text)
			if err != nil {
				fail(err)
			}
			color.Green("✅ Comment added (%s comments on post %d)", lumagram.FormatCount(res.CommentsCount), postID)
		},
	}
}

func createStoriesCmd() *cobra.Command {
	var open int64
	var steps int

	cmd := &cobra.Command{
		Use:   "stories",
		Short: "Show the story tray or view a story",
		Long: `Without flags, list current stories. With --open, start the viewer at
the given story and step forward --steps times, wrapping at the ends.`,
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			sc := lumagram.NewStoryController(a.client, a.log)
			tray, err := sc.Load(context.Background())
			if err != nil {
				fail(err)
			}
			if open == 0 {
				if _, err := sc.LoadSelf(context.Background()); err != nil {
					a.log.Debug().Err(err).Msg("loading own profile for the tray failed")
				}
				a.render.StoryTray(sc.Self(), tray, time.Now())
				return
			}

			sc.Open(open)
			story, ok := sc.Current()
			if !ok {
				color.Red("❌ Story %d not found", open)
				os.Exit(1)
			}
			pos := position(tray, story.ID)
			a.render.StoryView(story, pos, len(tray), time.Now())
			for i := 0; i < steps; i++ {
				story, ok = sc.Next()
				if !ok {
					break
				}
				a.render.StoryView(story, position(tray, story.ID), len(tray), time.Now())
			}
		},
	}

	cmd.Flags().Int64Var(&open, "open", 0, "Story id to open in the viewer")
	cmd.Flags().IntVar(&steps, "steps", 0, "How many stories to advance after opening")

	return cmd
}

func position(tray []lumagram.Story, id int64) int {
	for i, s := range tray {
		if s.ID == id {
			return i + 1
		}
	}
	return 0
}

func createPeopleCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "people",
		Short: "Show people you may know",
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			pc := lumagram.NewPeopleController(a.client, a.log)
			users, err := pc.Load(context.Background())
			if err != nil {
				fail(err)
			}
			for all && !pc.Exhausted() {
				users, err = pc.LoadMore(context.Background())
				if err != nil {
					fail(err)
				}
			}
			a.render.People(users, pc.Exhausted())
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Load every suggestion page")

	return cmd
}

func createFollowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow <user-id>",
		Short: "Follow or unfollow a user",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			userID := parseID(args[0], "user id")
			pc := lumagram.NewProfileController(a.client, a.log)
			res, err := pc.ToggleFollow(context.Background(), userID)
			if err != nil {
				fail(err)
			}
			if res.IsFollowing {
				color.Green("✅ Following user %d (%s followers)", userID, lumagram.FormatCount(res.FollowersCount))
			} else {
				color.Yellow("Unfollowed user %d (%s followers)", userID, lumagram.FormatCount(res.FollowersCount))
			}
		},
	}
}

func createProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile [user-id]",
		Short: "Show a profile (yours by default)",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			pc := lumagram.NewProfileController(a.client, a.log)
			var view *lumagram.ProfileView
			var err error
			if len(args) == 0 {
				view, err = pc.LoadSelf(context.Background())
			} else {
				view, err = pc.Load(context.Background(), parseID(args[0], "user id"))
			}
			if err != nil {
				fail(err)
			}
			a.render.Profile(view, time.Now())
		},
	}

	cmd.AddCommand(createProfileEditCmd())
	return cmd
}

func createProfileEditCmd() *cobra.Command {
	var upd lumagram.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit your bio, privacy, or profile picture",
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			pc := lumagram.NewProfileController(a.client, a.log)
			user, err := pc.Update(context.Background(), upd)
			if err != nil {
				fail(err)
			}
			color.Green("✅ Profile updated for %s", user.Username)
		},
	}

	cmd.Flags().StringVar(&upd.Bio, "bio", "", "New bio (max 500 chars)")
	cmd.Flags().BoolVar(&upd.IsPrivate, "private", false, "Make the account private")
	cmd.Flags().StringVar(&upd.ProfilePicPath, "pic", "", "Path to a new profile picture")

	return cmd
}

func createCreateCmd() *cobra.Command {
	var req lumagram.CreateRequest
	var noComments bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new post or story",
		Long: `Upload an image as a post or a 24-hour story. Stories ignore captions
and never accept comments.`,
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			req.AllowComments = !noComments
			cc := lumagram.NewCreateController(a.client, a.log)
			res, err := cc.Publish(context.Background(), req)
			if err != nil {
				fail(err)
			}
			switch res.Type {
			case lumagram.KindStory:
				color.Green("✅ Story %d published (expires in 24h)", res.Story.ID)
			default:
				color.Green("✅ Post %d published", res.Post.ID)
			}
		},
	}

	cmd.Flags().StringVar(&req.Kind, "kind", lumagram.KindPost, "What to publish: post or story")
	cmd.Flags().StringVar(&req.ImagePath, "image", "", "Path to the image file")
	cmd.Flags().StringVar(&req.Caption, "caption", "", "Caption text")
	cmd.Flags().StringVar(&req.Location, "location", "", "Location label")
	cmd.Flags().BoolVar(&noComments, "no-comments", false, "Disable comments on the post")
	cmd.MarkFlagRequired("image")

	return cmd
}

func createMessagesCmd() *cobra.Command {
	var conversation int64
	var watch bool

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show conversations and read a thread",
		Long: `List conversations and show the selected thread. With --watch, keep
polling the thread for new messages until interrupted.`,
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			mc := lumagram.NewMessageController(a.client, a.cfg.PollInterval(), a.log)
			defer mc.Close()

			ctx := context.Background()
			convos, err := mc.Open(ctx, conversation)
			if err != nil {
				fail(err)
			}

			session, err := a.client.CheckSession(ctx)
			if err != nil {
				fail(err)
			}

			now := time.Now()
			a.render.Conversations(convos, mc.SelectedID(), now)
			if mc.SelectedID() != 0 {
				fmt.Println()
				a.render.Thread(mc.Messages(), session.UserID, now)
			}

			a.saveSession()
			if !watch || mc.SelectedID() == 0 {
				return
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt)
			notifyExtraSignals(sigChan)

			color.Yellow("Watching conversation %d (Ctrl+C to stop)...", mc.SelectedID())
			ticker := time.NewTicker(a.cfg.PollInterval())
			defer ticker.Stop()
			seen := len(mc.Messages())
			for {
				select {
				case sig := <-sigChan:
					color.Yellow("\n🛑 %s", getShutdownMessage(sig))
					return
				case <-ticker.C:
					msgs := mc.Messages()
					if len(msgs) > seen {
						a.render.Thread(msgs[seen:], session.UserID, time.Now())
						seen = len(msgs)
					}
				}
			}
		},
	}

	cmd.Flags().Int64Var(&conversation, "conversation", 0, "Conversation id to open")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep polling for new messages")

	cmd.AddCommand(createMessagesSendCmd())
	cmd.AddCommand(createMessagesStartCmd())
	cmd.AddCommand(createMessagesContactsCmd())

	return cmd
}

func createMessagesSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <conversation-id> <text>...",
		Short: "Send a message",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			mc := lumagram.NewMessageController(a.client, 0, a.log)
			defer mc.Close()

			ctx := context.Background()
			if _, err := mc.Select(ctx, parseID(args[0], "conversation id")); err != nil {
				fail(err)
			}
			msg, err := mc.Send(ctx, strings.Join(args[1:], " "))
			if err != nil {
				fail(err)
			}
			if msg == nil {
				color.Yellow("A send for this conversation is already in flight")
				return
			}
			color.Green("✅ Sent message %d", msg.ID)
		},
	}
}

func createMessagesStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <user-id>",
		Short: "Start or reopen a conversation with a user",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			mc := lumagram.NewMessageController(a.client, 0, a.log)
			defer mc.Close()

			ctx := context.Background()
			userID := parseID(args[0], "user id")

			// Reuse an existing thread when the contact list records one.
			target := lumagram.User{ID: userID}
			contacts, err := mc.Followings(ctx)
			if err == nil {
				for _, u := range contacts {
					if u.ID == userID {
						target = u
						break
					}
				}
			}

			convo, err := mc.StartWith(ctx, target)
			if err != nil {
				fail(err)
			}
			color.Green("✅ Conversation %d ready", convo.ID)
		},
	}
}

func createMessagesContactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contacts",
		Short: "List mutual followings you can message",
		Run: func(cmd *cobra.Command, args []string) {
			a := buildApp()
			mc := lumagram.NewMessageController(a.client, 0, a.log)
			defer mc.Close()

			users, err := mc.Followings(context.Background())
			if err != nil {
				fail(err)
			}
			if len(users) == 0 {
				fmt.Println("No mutual followings yet. Follow people back to message them.")
				return
			}
			for _, u := range users {
				line := fmt.Sprintf("%d. @%s", u.ID, u.Username)
				if u.FullName != "" {
					line += "  " + u.FullName
				}
				if u.ConversationID != 0 {
					line += fmt.Sprintf("  (conversation %d)", u.ConversationID)
				}
				fmt.Println(line)
			}
		},
	}
}
