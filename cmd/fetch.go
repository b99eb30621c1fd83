package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"xplore/internal/api"
	"xplore/internal/command"
	"xplore/internal/formatting"
)

// fetchFlags are the pagination flags every fetch command carries.
type fetchFlags struct {
	max       int
	pageToken string
}

func (f *fetchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.max, "max", 0, "Maximum results per page (default from config)")
	cmd.Flags().StringVar(&f.pageToken, "page-token", "", "Pagination token from a previous page's meta")
}

func (f *fetchFlags) page(s *session) api.Page {
	max := f.max
	if max <= 0 {
		max = s.cfg.DefaultMaxResults
	}
	return api.Page{MaxResults: max, Token: f.pageToken}
}

// newFetchCmds builds the scripting commands. Each writes one JSON
// object per line to stdout so the output pipes into jq cleanly.
func newFetchCmds() []*cobra.Command {
	return []*cobra.Command{
		newHomeCmd(),
		newMentionsCmd(),
		newBookmarksCmd(),
		newSearchCmd(),
		newUserCmd(),
		newOpenCmd(),
		newFollowersCmd(),
		newFollowingCmd(),
	}
}

// newTweetListCmd is the shared shape of the tweet-list commands.
func newTweetListCmd(use, short string, fetch func(ctx context.Context, s *session, page api.Page) (*api.TweetsResponse, error)) *cobra.Command {
	flags := &fetchFlags{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			resp, err := fetch(cmd.Context(), s, flags.page(s))
			if err != nil {
				return err
			}
			return formatting.WriteTweetsJSONL(cmd.OutOrStdout(), resp)
		},
	}
	flags.register(cmd)
	return cmd
}

func newHomeCmd() *cobra.Command {
	return newTweetListCmd("home", "Fetch your home timeline as JSONL",
		func(ctx context.Context, s *session, page api.Page) (*api.TweetsResponse, error) {
			return s.client.HomeTimeline(ctx, page)
		})
}

func newMentionsCmd() *cobra.Command {
	return newTweetListCmd("mentions", "Fetch your mentions as JSONL",
		func(ctx context.Context, s *session, page api.Page) (*api.TweetsResponse, error) {
			return s.client.Mentions(ctx, page)
		})
}

func newBookmarksCmd() *cobra.Command {
	return newTweetListCmd("bookmarks", "Fetch your bookmarks as JSONL",
		func(ctx context.Context, s *session, page api.Page) (*api.TweetsResponse, error) {
			return s.client.Bookmarks(ctx, page)
		})
}

func newSearchCmd() *cobra.Command {
	flags := &fetchFlags{}
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search recent tweets as JSONL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			resp, err := s.client.SearchRecent(cmd.Context(), strings.Join(args, " "), flags.page(s))
			if err != nil {
				return err
			}
			return formatting.WriteTweetsJSONL(cmd.OutOrStdout(), resp)
		},
	}
	flags.register(cmd)
	return cmd
}

func newUserCmd() *cobra.Command {
	flags := &fetchFlags{}
	var withTimeline bool

	cmd := &cobra.Command{
		Use:   "user <handle>",
		Short: "Fetch a user profile (and optionally their timeline) as JSONL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			resp, err := s.client.UserByUsername(ctx, command.StripAt(args[0]))
			if err != nil {
				return err
			}
			if err := formatting.WriteUserJSONL(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !withTimeline {
				return nil
			}

			tweets, err := s.client.UserTimeline(ctx, resp.Data.ID, flags.page(s))
			if err != nil {
				return err
			}
			return formatting.WriteTweetsJSONL(cmd.OutOrStdout(), tweets)
		},
	}
	cmd.Flags().BoolVar(&withTimeline, "timeline", false, "Also fetch the user's recent tweets")
	flags.register(cmd)
	return cmd
}

func newOpenCmd() *cobra.Command {
	flags := &fetchFlags{}
	var withThread bool

	cmd := &cobra.Command{
		Use:   "open <id or url>",
		Short: "Fetch a tweet (and optionally its thread) as JSONL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := command.ParseTweetID(args[0])
			if !ok {
				return fmt.Errorf("%q is not a tweet ID or status URL", args[0])
			}

			s, err := newSession()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			resp, err := s.client.Tweet(ctx, id)
			if err != nil {
				return err
			}
			if err := formatting.WriteTweetJSONL(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !withThread {
				return nil
			}

			conversation := resp.Data.ConversationID
			if conversation == "" {
				conversation = resp.Data.ID
			}
			thread, err := s.client.ConversationThread(ctx, conversation, flags.page(s))
			if err != nil {
				return err
			}
			return formatting.WriteTweetsJSONL(cmd.OutOrStdout(), thread)
		},
	}
	cmd.Flags().BoolVar(&withThread, "thread", false, "Also fetch the rest of the conversation")
	flags.register(cmd)
	return cmd
}

// newUserListCmd is the shared shape of followers/following.
func newUserListCmd(use, short string, fetch func(ctx context.Context, s *session, userID string, page api.Page) (*api.UsersResponse, error)) *cobra.Command {
	flags := &fetchFlags{}
	var asTable bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			user, err := s.client.UserByUsername(ctx, command.StripAt(args[0]))
			if err != nil {
				return err
			}
			resp, err := fetch(ctx, s, user.Data.ID, flags.page(s))
			if err != nil {
				return err
			}
			if asTable {
				formatting.RenderUsersTable(cmd.OutOrStdout(), resp.Data)
				return nil
			}
			return formatting.WriteUsersJSONL(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "Render as a table instead of JSONL")
	flags.register(cmd)
	return cmd
}

func newFollowersCmd() *cobra.Command {
	return newUserListCmd("followers <handle>", "Fetch a user's followers",
		func(ctx context.Context, s *session, userID string, page api.Page) (*api.UsersResponse, error) {
			return s.client.Followers(ctx, userID, page)
		})
}

func newFollowingCmd() *cobra.Command {
	return newUserListCmd("following <handle>", "Fetch who a user follows",
		func(ctx context.Context, s *session, userID string, page api.Page) (*api.UsersResponse, error) {
			return s.client.Following(ctx, userID, page)
		})
}
