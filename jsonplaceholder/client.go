package jsonplaceholder

import (
	"context"
	"fmt"
	nethttp "net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gaborage/webclient/httpclient"
	"github.com/gaborage/webclient/logger"
)

// DefaultBaseURL is the public JSONPlaceholder endpoint
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

const acceptJSON = "application/json"

// Client calls the JSONPlaceholder API
type Client struct {
	http    httpclient.Client
	logger  logger.Logger
	baseURL string
}

// New creates a JSONPlaceholder client. An empty baseURL selects DefaultBaseURL.
func New(c httpclient.Client, log logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	log.Info().Str("base_url", baseURL).Msg("Initialized JSONPlaceholder client")
	return &Client{http: c, logger: log, baseURL: baseURL}
}

// GetAllPosts lists every post
func (c *Client) GetAllPosts(ctx context.Context) ([]Post, error) {
	log := c.logger.WithContext(ctx)
	log.Debug().Msg("Fetching all posts")

	posts, err := get[[]Post](ctx, c.http, c.baseURL+"/posts")
	if err != nil {
		log.Error().Err(err).Msg("Error fetching posts")
		return nil, err
	}
	log.Debug().Int("count", len(posts)).Msg("Fetched posts")
	return posts, nil
}

// GetPostByID fetches a single post
func (c *Client) GetPostByID(ctx context.Context, id int64) (*Post, error) {
	log := c.logger.WithContext(ctx)
	log.Debug().Int64("post_id", id).Msg("Fetching post")

	post, err := get[*Post](ctx, c.http, fmt.Sprintf("%s/posts/%d", c.baseURL, id))
	if err != nil {
		log.Error().Err(err).Int64("post_id", id).Msg("Error fetching post")
		return nil, err
	}
	log.Debug().Int64("post_id", id).Msg("Fetched post")
	return post, nil
}

// GetCommentsByPostID lists the comments of a post
func (c *Client) GetCommentsByPostID(ctx context.Context, postID int64) ([]Comment, error) {
	log := c.logger.WithContext(ctx)
	log.Debug().Int64("post_id", postID).Msg("Fetching comments")

	comments, err := get[[]Comment](ctx, c.http, fmt.Sprintf("%s/posts/%d/comments", c.baseURL, postID))
	if err != nil {
		log.Error().Err(err).Int64("post_id", postID).Msg("Error fetching comments")
		return nil, err
	}
	log.Debug().Int64("post_id", postID).Int("count", len(comments)).Msg("Fetched comments")
	return comments, nil
}

// GetPostWithComments fetches a post and its comments concurrently.
// The first failure cancels the other call.
func (c *Client) GetPostWithComments(ctx context.Context, id int64) (*PostWithComments, error) {
	var (
		post     *Post
		comments []Comment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		post, err = c.GetPostByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = c.GetCommentsByPostID(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("post %d: empty response", id)
	}

	return &PostWithComments{Post: *post, Comments: comments}, nil
}

// CreatePost creates a post and returns it with its assigned ID
func (c *Client) CreatePost(ctx context.Context, post Post) (*Post, error) {
	log := c.logger.WithContext(ctx)
	log.Debug().Str("title", post.Title).Msg("Creating post")

	created, err := send[*Post](ctx, c.http, nethttp.MethodPost, c.baseURL+"/posts", post)
	if err != nil {
		log.Error().Err(err).Msg("Error creating post")
		return nil, err
	}
	if created != nil {
		log.Debug().Int64("post_id", created.ID).Msg("Created post")
	}
	return created, nil
}

// UpdatePost replaces the post with the given ID
func (c *Client) UpdatePost(ctx context.Context, id int64, post Post) (*Post, error) {
	log := c.logger.WithContext(ctx)
	log.Debug().Int64("post_id", id).Msg("Updating post")

	updated, err := send[*Post](ctx, c.http, nethttp.MethodPut, fmt.Sprintf("%s/posts/%d", c.baseURL, id), post)
	if err != nil {
		log.Error().Err(err).Int64("post_id", id).Msg("Error updating post")
		return nil, err
	}
	log.Debug().Int64("post_id", id).Msg("Updated post")
	return updated, nil
}

// DeletePost deletes the post with the given ID
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	log := c.logger.WithContext(ctx)
	log.Debug().Int64("post_id", id).Msg("Deleting post")

	if _, err := c.http.Delete(ctx, &httpclient.Request{URL: fmt.Sprintf("%s/posts/%d", c.baseURL, id)}); err != nil {
		log.Error().Err(err).Int64("post_id", id).Msg("Error deleting post")
		return err
	}
	log.Debug().Int64("post_id", id).Msg("Deleted post")
	return nil
}

// GetAllUsers lists every user
func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	log := c.logger.WithContext(ctx)
	log.Debug().Msg("Fetching all users")

	users, err := get[[]User](ctx, c.http, c.baseURL+"/users")
	if err != nil {
		log.Error().Err(err).Msg("Error fetching users")
		return nil, err
	}
	log.Debug().Int("count", len(users)).Msg("Fetched users")
	return users, nil
}

// GetUserByID fetches a single user
func (c *Client) GetUserByID(ctx context.Context, id int64) (*User, error) {
	log := c.logger.WithContext(ctx)
	log.Debug().Int64("user_id", id).Msg("Fetching user")

	user, err := get[*User](ctx, c.http, fmt.Sprintf("%s/users/%d", c.baseURL, id))
	if err != nil {
		log.Error().Err(err).Int64("user_id", id).Msg("Error fetching user")
		return nil, err
	}
	log.Debug().Int64("user_id", id).Msg("Fetched user")
	return user, nil
}

// GetAllTodos lists every todo
func (c *Client) GetAllTodos(ctx context.Context) ([]Todo, error) {
	log := c.logger.WithContext(ctx)
	log.Debug().Msg("Fetching all todos")

	todos, err := get[[]Todo](ctx, c.http, c.baseURL+"/todos")
	if err != nil {
		log.Error().Err(err).Msg("Error fetching todos")
		return nil, err
	}
	log.Debug().Int("count", len(todos)).Msg("Fetched todos")
	return todos, nil
}

// GetTodosByUserID lists the todos of a user
func (c *Client) GetTodosByUserID(ctx context.Context, userID int64) ([]Todo, error) {
	log := c.logger.WithContext(ctx)
	log.Debug().Int64("user_id", userID).Msg("Fetching todos")

	todos, err := get[[]Todo](ctx, c.http, fmt.Sprintf("%s/users/%d/todos", c.baseURL, userID))
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Error fetching todos")
		return nil, err
	}
	log.Debug().Int64("user_id", userID).Int("count", len(todos)).Msg("Fetched todos")
	return todos, nil
}

func get[T any](ctx context.Context, c httpclient.Client, url string) (T, error) {
	req := &httpclient.Request{URL: url, Headers: map[string]string{"Accept": acceptJSON}}
	return httpclient.Invoke[T](ctx, c, nethttp.MethodGet, req)
}

func send[T any](ctx context.Context, c httpclient.Client, method, url string, body any) (T, error) {
	req, err := httpclient.NewJSONRequest(url, body)
	if err != nil {
		var zero T
		return zero, err
	}
	req.Headers["Accept"] = acceptJSON
	return httpclient.Invoke[T](ctx, c, method, req)
}
