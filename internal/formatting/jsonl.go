package formatting

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"xplore/internal/api"
)

// TweetRecord is the denormalized shape the fetch commands emit: the
// tweet joined with its expanded author and media, one object per line.
type TweetRecord struct {
	ID             string             `json:"id"`
	Text           string             `json:"text"`
	CreatedAt      *time.Time         `json:"created_at,omitempty"`
	Lang           string             `json:"lang,omitempty"`
	ConversationID string             `json:"conversation_id,omitempty"`
	Author         *api.User          `json:"author,omitempty"`
	Metrics        *api.PublicMetrics `json:"metrics,omitempty"`
	Media          []api.Media        `json:"media,omitempty"`
}

// DenormalizeTweet joins one tweet with its includes.
func DenormalizeTweet(tweet *api.Tweet, includes *api.Includes) TweetRecord {
	record := TweetRecord{
		ID:             tweet.ID,
		Text:           tweet.FullText(),
		CreatedAt:      tweet.CreatedAt,
		Lang:           tweet.Lang,
		ConversationID: tweet.ConversationID,
		Metrics:        tweet.PublicMetrics,
	}
	if includes == nil {
		return record
	}

	for i := range includes.Users {
		if includes.Users[i].ID == tweet.AuthorID {
			record.Author = &includes.Users[i]
			break
		}
	}
	if tweet.Attachments != nil {
		media := make(map[string]api.Media, len(includes.Media))
		for _, m := range includes.Media {
			media[m.MediaKey] = m
		}
		for _, key := range tweet.Attachments.MediaKeys {
			if m, ok := media[key]; ok {
				record.Media = append(record.Media, m)
			}
		}
	}
	return record
}

// WriteTweetsJSONL writes one denormalized record per tweet.
func WriteTweetsJSONL(w io.Writer, resp *api.TweetsResponse) error {
	enc := json.NewEncoder(w)
	for i := range resp.Data {
		if err := enc.Encode(DenormalizeTweet(&resp.Data[i], resp.Includes)); err != nil {
			return err
		}
	}
	return nil
}

// WriteTweetJSONL writes a single-tweet response as one record. A
// data-absent envelope (deleted or protected tweet) is an error, not a
// blank line.
func WriteTweetJSONL(w io.Writer, resp *api.TweetResponse) error {
	if resp.Data == nil {
		return errors.New("response has no tweet")
	}
	return json.NewEncoder(w).Encode(DenormalizeTweet(resp.Data, resp.Includes))
}

// WriteUsersJSONL writes one user object per line.
func WriteUsersJSONL(w io.Writer, resp *api.UsersResponse) error {
	enc := json.NewEncoder(w)
	for i := range resp.Data {
		if err := enc.Encode(&resp.Data[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteUserJSONL writes a single-user response as one line.
func WriteUserJSONL(w io.Writer, resp *api.UserResponse) error {
	if resp.Data == nil {
		return errors.New("response has no user")
	}
	return json.NewEncoder(w).Encode(resp.Data)
}
