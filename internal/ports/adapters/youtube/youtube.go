package youtube

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/forPelevin/hlshorts/internal/types"
)

const (
	maxTitleRunes    = 100
	defaultPrivacy   = "private"
	defaultCategory  = "24" // Entertainment
	shortsHashtag    = "#shorts"
	watchURLTemplate = "https://youtube.com/shorts/%s"
)

type Options struct {
	// CredentialsFile is a service account JSON key.
	CredentialsFile string
	Privacy         string
	CategoryID      string
}

type Uploader struct {
	service  *youtube.Service
	privacy  string
	category string
}

func New(ctx context.Context, o Options) (*Uploader, error) {
	data, err := os.ReadFile(o.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("youtube: read credentials: %w", err)
	}
	jwt, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("youtube: parse credentials: %w", err)
	}
	service, err := youtube.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}
	if o.Privacy == "" {
		o.Privacy = defaultPrivacy
	}
	if o.CategoryID == "" {
		o.CategoryID = defaultCategory
	}
	return &Uploader{service: service, privacy: o.Privacy, category: o.CategoryID}, nil
}

func (u *Uploader) Name() string { return "youtube" }

// Publish uploads the short and returns its watch URL.
func (u *Uploader) Publish(ctx context.Context, item types.PublishItem) (string, error) {
	f, err := os.Open(item.VideoPath)
	if err != nil {
		return "", fmt.Errorf("youtube: open video: %w", err)
	}
	defer f.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       Title(item.Title),
			Description: Description(item.Description),
			Tags:        item.Tags,
			CategoryId:  u.category,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.privacy,
			SelfDeclaredMadeForKids: false,
		},
	}
	resp, err := u.service.Videos.Insert([]string{"snippet", "status"}, video).Media(f).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("youtube: upload: %w", err)
	}
	return fmt.Sprintf(watchURLTemplate, resp.Id), nil
}

// Title trims to the platform limit and falls back to a generic title.
func Title(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "Highlights"
	}
	if utf8.RuneCountInString(s) > maxTitleRunes {
		r := []rune(s)
		s = string(r[:maxTitleRunes-3]) + "..."
	}
	return s
}

// Description appends the shorts hashtag once.
func Description(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(strings.ToLower(s), shortsHashtag) {
		return s
	}
	if s == "" {
		return shortsHashtag
	}
	return s + "\n\n" + shortsHashtag
}
