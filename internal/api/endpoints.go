package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Field selections sent on tweet-bearing endpoints. These match what the
// presentation layer consumes; anything not listed here is never fetched.
const (
	tweetFields = "created_at,public_metrics,author_id,conversation_id," +
		"in_reply_to_user_id,referenced_tweets,attachments,entities,lang,note_tweet"
	tweetExpansions = "author_id,referenced_tweets.id,attachments.media_keys"
	userFields      = "name,username,verified,profile_image_url,public_metrics," +
		"created_at,description,url,location,pinned_tweet_id"
	mediaFields = "url,preview_image_url,type,width,height,alt_text"
)

// Page is a pagination request: result count plus the opaque token from a
// previous response's meta.next_token.
type Page struct {
	MaxResults int
	Token      string
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// tweetListQuery builds the standard query for tweet-list endpoints.
func tweetListQuery(page Page) url.Values {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(clamp(page.MaxResults, 10, 100)))
	q.Set("tweet.fields", tweetFields)
	q.Set("expansions", tweetExpansions)
	q.Set("user.fields", userFields)
	q.Set("media.fields", mediaFields)
	if page.Token != "" {
		q.Set("pagination_token", page.Token)
	}
	return q
}

// userListQuery builds the standard query for user-list endpoints.
func userListQuery(page Page) url.Values {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(clamp(page.MaxResults, 1, 1000)))
	q.Set("user.fields", userFields)
	if page.Token != "" {
		q.Set("pagination_token", page.Token)
	}
	return q
}

// dataAbsent builds the error for a 200 envelope with no data object.
// The API does this for deleted, protected, and suspended subjects and
// puts the reason in the errors array.
func dataAbsent(op string, errs []ErrorDetail) error {
	if len(errs) > 0 {
		if errs[0].Detail != "" {
			return fmt.Errorf("%s: %s", op, errs[0].Detail)
		}
		if errs[0].Title != "" {
			return fmt.Errorf("%s: %s", op, errs[0].Title)
		}
	}
	return fmt.Errorf("%s returned no data", op)
}

// Me returns the authenticated user, caching the ID after the first call.
func (c *Client) Me(ctx context.Context) (*User, error) {
	q := url.Values{}
	q.Set("user.fields", userFields)

	resp, err := execute[*User](ctx, c, Request{
		Operation:           "authenticated user lookup",
		Path:                "/users/me",
		Query:               q,
		RequiresUserContext: true,
	})
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, dataAbsent("authenticated user lookup", resp.Errors)
	}

	c.userMu.Lock()
	c.userID = resp.Data.ID
	c.userMu.Unlock()
	return resp.Data, nil
}

// myUserID returns the cached authenticated user ID, fetching it once.
func (c *Client) myUserID(ctx context.Context) (string, error) {
	c.userMu.Lock()
	id := c.userID
	c.userMu.Unlock()
	if id != "" {
		return id, nil
	}

	user, err := c.Me(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// HomeTimeline fetches the authenticated user's reverse-chronological
// home timeline.
func (c *Client) HomeTimeline(ctx context.Context, page Page) (*TweetsResponse, error) {
	id, err := c.myUserID(ctx)
	if err != nil {
		return nil, err
	}
	return execute[[]Tweet](ctx, c, Request{
		Operation:           "home timeline",
		Path:                fmt.Sprintf("/users/%s/timelines/reverse_chronological", id),
		Query:               tweetListQuery(page),
		RequiresUserContext: true,
	})
}

// Mentions fetches tweets mentioning the authenticated user.
func (c *Client) Mentions(ctx context.Context, page Page) (*TweetsResponse, error) {
	id, err := c.myUserID(ctx)
	if err != nil {
		return nil, err
	}
	return execute[[]Tweet](ctx, c, Request{
		Operation:           "mentions",
		Path:                fmt.Sprintf("/users/%s/mentions", id),
		Query:               tweetListQuery(page),
		RequiresUserContext: true,
	})
}

// Bookmarks fetches the authenticated user's bookmarks.
func (c *Client) Bookmarks(ctx context.Context, page Page) (*TweetsResponse, error) {
	id, err := c.myUserID(ctx)
	if err != nil {
		return nil, err
	}
	return execute[[]Tweet](ctx, c, Request{
		Operation:           "bookmarks",
		Path:                fmt.Sprintf("/users/%s/bookmarks", id),
		Query:               tweetListQuery(page),
		RequiresUserContext: true,
	})
}

// Tweet fetches a single tweet by ID.
func (c *Client) Tweet(ctx context.Context, tweetID string) (*TweetResponse, error) {
	q := url.Values{}
	q.Set("tweet.fields", tweetFields)
	q.Set("expansions", tweetExpansions)
	q.Set("user.fields", userFields)
	q.Set("media.fields", mediaFields)

	resp, err := execute[*Tweet](ctx, c, Request{
		Operation: "tweet lookup",
		Path:      "/tweets/" + url.PathEscape(tweetID),
		Query:     q,
	})
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, dataAbsent("tweet lookup", resp.Errors)
	}
	return resp, nil
}

// SearchRecent searches recent tweets matching a query.
func (c *Client) SearchRecent(ctx context.Context, query string, page Page) (*TweetsResponse, error) {
	q := tweetListQuery(page)
	q.Set("query", query)

	return execute[[]Tweet](ctx, c, Request{
		Operation: "recent search",
		Path:      "/tweets/search/recent",
		Query:     q,
	})
}

// ConversationThread fetches the tweets of a conversation, newest first.
// Implemented as a recency-sorted search on the conversation ID.
func (c *Client) ConversationThread(ctx context.Context, conversationID string, page Page) (*TweetsResponse, error) {
	q := tweetListQuery(page)
	q.Set("query", "conversation_id:"+conversationID)
	q.Set("sort_order", "recency")

	return execute[[]Tweet](ctx, c, Request{
		Operation: "conversation thread",
		Path:      "/tweets/search/recent",
		Query:     q,
	})
}

// UserByUsername looks up a user by handle (without the leading @).
func (c *Client) UserByUsername(ctx context.Context, username string) (*UserResponse, error) {
	q := url.Values{}
	q.Set("user.fields", userFields)

	resp, err := execute[*User](ctx, c, Request{
		Operation: "user lookup",
		Path:      "/users/by/username/" + url.PathEscape(username),
		Query:     q,
	})
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, dataAbsent("user lookup", resp.Errors)
	}
	return resp, nil
}

// UserByID looks up a user by numeric ID.
func (c *Client) UserByID(ctx context.Context, userID string) (*UserResponse, error) {
	q := url.Values{}
	q.Set("user.fields", userFields)

	resp, err := execute[*User](ctx, c, Request{
		Operation: "user lookup",
		Path:      "/users/" + url.PathEscape(userID),
		Query:     q,
	})
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, dataAbsent("user lookup", resp.Errors)
	}
	return resp, nil
}

// UserTimeline fetches a user's own tweets.
func (c *Client) UserTimeline(ctx context.Context, userID string, page Page) (*TweetsResponse, error) {
	return execute[[]Tweet](ctx, c, Request{
		Operation: "user timeline",
		Path:      fmt.Sprintf("/users/%s/tweets", url.PathEscape(userID)),
		Query:     tweetListQuery(page),
	})
}

// LikedTweets fetches tweets liked by a user.
func (c *Client) LikedTweets(ctx context.Context, userID string, page Page) (*TweetsResponse, error) {
	return execute[[]Tweet](ctx, c, Request{
		Operation: "liked tweets",
		Path:      fmt.Sprintf("/users/%s/liked_tweets", url.PathEscape(userID)),
		Query:     tweetListQuery(page),
	})
}

// Followers fetches a user's followers.
func (c *Client) Followers(ctx context.Context, userID string, page Page) (*UsersResponse, error) {
	return execute[[]User](ctx, c, Request{
		Operation: "followers",
		Path:      fmt.Sprintf("/users/%s/followers", url.PathEscape(userID)),
		Query:     userListQuery(page),
	})
}

// Following fetches the users a user follows.
func (c *Client) Following(ctx context.Context, userID string, page Page) (*UsersResponse, error) {
	return execute[[]User](ctx, c, Request{
		Operation: "following",
		Path:      fmt.Sprintf("/users/%s/following", url.PathEscape(userID)),
		Query:     userListQuery(page),
	})
}
