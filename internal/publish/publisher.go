// Package publish posts rendered recipes to Blogger.
package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	blogger "google.golang.org/api/blogger/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"chefpress/internal/logger"
)

// ErrRejected is wrapped by errors the blog API returned with a 4xx status.
var ErrRejected = errors.New("post rejected by blog")

// Post is one article to publish.
type Post struct {
	Title  string
	HTML   string
	Labels []string
	Draft  bool
}

// Published identifies a created post.
type Published struct {
	PostID      string
	URL         string
	PublishedAt time.Time
}

// Publisher creates blog posts.
type Publisher interface {
	Publish(ctx context.Context, post Post) (*Published, error)
}

// BloggerPublisher publishes to one Blogger blog.
type BloggerPublisher struct {
	blogID  string
	service *blogger.Service
	now     func() time.Time
}

// NewBloggerPublisher creates a publisher for blogID. client must already
// carry credentials, see TokenStore.Client.
func NewBloggerPublisher(ctx context.Context, blogID string, client *http.Client, opts ...option.ClientOption) (*BloggerPublisher, error) {
	if blogID == "" {
		return nil, errors.New("blog id is required")
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := blogger.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create blogger service: %w", err)
	}
	return &BloggerPublisher{blogID: blogID, service: svc, now: time.Now}, nil
}

// Publish inserts post, as a draft when post.Draft is set.
func (p *BloggerPublisher) Publish(ctx context.Context, post Post) (*Published, error) {
	logger.Info("Publishing post", "title", post.Title, "labels", len(post.Labels), "draft", post.Draft)

	res, err := p.service.Posts.Insert(p.blogID, &blogger.Post{
		Title:   post.Title,
		Content: post.HTML,
		Labels:  post.Labels,
	}).IsDraft(post.Draft).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code >= 400 && gerr.Code < 500 {
			return nil, fmt.Errorf("%w: %d %s", ErrRejected, gerr.Code, gerr.Message)
		}
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	out := &Published{PostID: res.Id, URL: res.Url, PublishedAt: p.now().UTC()}
	if ts, err := time.Parse(time.RFC3339, res.Published); err == nil {
		out.PublishedAt = ts.UTC()
	}
	logger.Info("Post published", "post_id", out.PostID, "url", out.URL)
	return out, nil
}
