package api

import "time"

// Response is the X API v2 response envelope. Data is the payload type:
// a single object or a slice, depending on the endpoint.
type Response[T any] struct {
	Data     T             `json:"data,omitempty"`
	Includes *Includes     `json:"includes,omitempty"`
	Meta     *Meta         `json:"meta,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

// TweetResponse is a single-tweet envelope.
type TweetResponse = Response[*Tweet]

// TweetsResponse is a tweet-list envelope (timelines, search).
type TweetsResponse = Response[[]Tweet]

// UserResponse is a single-user envelope.
type UserResponse = Response[*User]

// UsersResponse is a user-list envelope (followers, following).
type UsersResponse = Response[[]User]

// Tweet is a post as returned by the v2 API.
type Tweet struct {
	ID                  string            `json:"id"`
	Text                string            `json:"text"`
	AuthorID            string            `json:"author_id,omitempty"`
	CreatedAt           *time.Time        `json:"created_at,omitempty"`
	ConversationID      string            `json:"conversation_id,omitempty"`
	InReplyToUserID     string            `json:"in_reply_to_user_id,omitempty"`
	Lang                string            `json:"lang,omitempty"`
	EditHistoryTweetIDs []string          `json:"edit_history_tweet_ids,omitempty"`
	PublicMetrics       *PublicMetrics    `json:"public_metrics,omitempty"`
	Entities            *Entities         `json:"entities,omitempty"`
	ReferencedTweets    []ReferencedTweet `json:"referenced_tweets,omitempty"`
	Attachments         *Attachments      `json:"attachments,omitempty"`
	NoteTweet           *NoteTweet        `json:"note_tweet,omitempty"`
}

// FullText returns the note_tweet text for long posts, falling back to the
// (possibly truncated) text field.
func (t *Tweet) FullText() string {
	if t.NoteTweet != nil && t.NoteTweet.Text != "" {
		return t.NoteTweet.Text
	}
	return t.Text
}

// PublicMetrics are a tweet's engagement counters.
type PublicMetrics struct {
	LikeCount       int64  `json:"like_count"`
	RetweetCount    int64  `json:"retweet_count"`
	ReplyCount      int64  `json:"reply_count"`
	QuoteCount      int64  `json:"quote_count"`
	BookmarkCount   *int64 `json:"bookmark_count,omitempty"`
	ImpressionCount *int64 `json:"impression_count,omitempty"`
}

// ReferencedTweet links a tweet to one it replies to, quotes, or retweets.
type ReferencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Attachments carries the media keys referenced by a tweet.
type Attachments struct {
	MediaKeys []string `json:"media_keys,omitempty"`
	PollIDs   []string `json:"poll_ids,omitempty"`
}

// NoteTweet is the full text of a post longer than the classic limit.
type NoteTweet struct {
	Text     string    `json:"text"`
	Entities *Entities `json:"entities,omitempty"`
}

// User is an account as returned by the v2 API.
type User struct {
	ID              string             `json:"id"`
	Username        string             `json:"username"`
	Name            string             `json:"name"`
	Description     string             `json:"description,omitempty"`
	CreatedAt       *time.Time         `json:"created_at,omitempty"`
	Verified        bool               `json:"verified,omitempty"`
	ProfileImageURL string             `json:"profile_image_url,omitempty"`
	URL             string             `json:"url,omitempty"`
	Location        string             `json:"location,omitempty"`
	PinnedTweetID   string             `json:"pinned_tweet_id,omitempty"`
	PublicMetrics   *UserPublicMetrics `json:"public_metrics,omitempty"`
}

// UserPublicMetrics are an account's counters.
type UserPublicMetrics struct {
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	TweetCount     int64 `json:"tweet_count"`
	ListedCount    int64 `json:"listed_count"`
}

// Media is an attachment object from the includes section.
type Media struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	URL             string `json:"url,omitempty"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
	AltText         string `json:"alt_text,omitempty"`
}

// Entities are the parsed references inside a tweet's text.
type Entities struct {
	URLs        []URLEntity     `json:"urls,omitempty"`
	Hashtags    []TagEntity     `json:"hashtags,omitempty"`
	Mentions    []MentionEntity `json:"mentions,omitempty"`
	Cashtags    []TagEntity     `json:"cashtags,omitempty"`
	Annotations []Annotation    `json:"annotations,omitempty"`
}

// URLEntity is a link inside a tweet, with its t.co form and expansion.
type URLEntity struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url,omitempty"`
	DisplayURL  string `json:"display_url,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// TagEntity is a hashtag or cashtag.
type TagEntity struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Tag   string `json:"tag"`
}

// MentionEntity is an @-mention.
type MentionEntity struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Username string `json:"username"`
	ID       string `json:"id,omitempty"`
}

// Annotation is a semantic annotation attached by the API.
type Annotation struct {
	Start          int     `json:"start"`
	End            int     `json:"end"`
	Probability    float64 `json:"probability"`
	Type           string  `json:"type"`
	NormalizedText string  `json:"normalized_text"`
}

// Includes carries the expanded objects referenced by the data payload.
type Includes struct {
	Users  []User  `json:"users,omitempty"`
	Tweets []Tweet `json:"tweets,omitempty"`
	Media  []Media `json:"media,omitempty"`
}

// Meta is the pagination and count metadata of a list response.
type Meta struct {
	ResultCount   int    `json:"result_count,omitempty"`
	NextToken     string `json:"next_token,omitempty"`
	PreviousToken string `json:"previous_token,omitempty"`
	NewestID      string `json:"newest_id,omitempty"`
	OldestID      string `json:"oldest_id,omitempty"`
}

// ErrorDetail is a partial-error entry the API attaches to otherwise
// successful responses.
type ErrorDetail struct {
	Detail string `json:"detail,omitempty"`
	Title  string `json:"title,omitempty"`
	Type   string `json:"type,omitempty"`
	Status int    `json:"status,omitempty"`
}
