package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/relationship"
	"github.com/vidtube/backend/internal/repositories"
)

type fakeContentStore struct {
	videos   map[string]models.Video
	tweets   map[string]models.Tweet
	comments map[string]models.Comment
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{
		videos:   make(map[string]models.Video),
		tweets:   make(map[string]models.Tweet),
		comments: make(map[string]models.Comment),
	}
}

func (s *fakeContentStore) CreateVideo(_ context.Context, video models.Video) error {
	if _, exists := s.videos[video.ID]; exists {
		return repositories.ErrConflict
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeContentStore) FindVideo(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeContentStore) ListVideosByOwner(_ context.Context, ownerID string) ([]models.Video, error) {
	var videos []models.Video
	for _, video := range s.videos {
		if video.OwnerID == ownerID {
			videos = append(videos, video)
		}
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].CreatedAt.After(videos[j].CreatedAt) })
	return videos, nil
}

func (s *fakeContentStore) DeleteVideo(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *fakeContentStore) AddView(_ context.Context, videoID string) error {
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[videoID] = video
	return nil
}

func (s *fakeContentStore) CreateTweet(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeContentStore) ListTweetsByOwner(_ context.Context, ownerID string) ([]models.Tweet, error) {
	var tweets []models.Tweet
	for _, tweet := range s.tweets {
		if tweet.OwnerID == ownerID {
			tweets = append(tweets, tweet)
		}
	}
	return tweets, nil
}

func (s *fakeContentStore) DeleteTweet(_ context.Context, id string) error {
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

func (s *fakeContentStore) CreateComment(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeContentStore) ListCommentsByVideo(_ context.Context, videoID string) ([]models.Comment, error) {
	var comments []models.Comment
	for _, comment := range s.comments {
		if comment.VideoID == videoID {
			comments = append(comments, comment)
		}
	}
	return comments, nil
}

func (s *fakeContentStore) DeleteComment(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *fakeContentStore) OwnerOf(_ context.Context, targetID string, kind relationship.TargetKind) (string, error) {
	switch kind {
	case relationship.KindVideo:
		if video, ok := s.videos[targetID]; ok {
			return video.OwnerID, nil
		}
	case relationship.KindTweet:
		if tweet, ok := s.tweets[targetID]; ok {
			return tweet.OwnerID, nil
		}
	case relationship.KindComment:
		if comment, ok := s.comments[targetID]; ok {
			return comment.OwnerID, nil
		}
	case relationship.KindChannel:
		return targetID, nil
	}
	return "", repositories.ErrNotFound
}

type fakeStorage struct {
	saved map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, key string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.saved[key] = data
	return "https://cdn.test/" + key, nil
}

type fakeIngestor struct {
	enqueued []string
}

func (f *fakeIngestor) Enqueue(_ context.Context, videoID, filename string, payload []byte) error {
	f.enqueued = append(f.enqueued, videoID)
	return nil
}

func multipartVideo(t *testing.T, title string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("title", title); err != nil {
		t.Fatalf("write title: %v", err)
	}
	if err := writer.WriteField("description", "a test upload"); err != nil {
		t.Fatalf("write description: %v", err)
	}
	part, err := writer.CreateFormFile("video", "clip.mp4")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("fake-mp4-bytes")); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestVideoHandlerPublish(t *testing.T) {
	store := newFakeContentStore()
	ingestor := &fakeIngestor{}
	handler := VideoHandler{Videos: store, Storage: newFakeStorage(), Ingestor: ingestor}

	body, contentType := multipartVideo(t, "My First Upload")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(middleware.WithAccount(req.Context(), models.PublicAccount{ID: "owner-1"}))
	rec := httptest.NewRecorder()

	handler.Publish(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status %d got %d: %s", http.StatusAccepted, rec.Code, rec.Body.String())
	}

	var video models.Video
	if err := json.NewDecoder(rec.Body).Decode(&video); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if video.AssetStatus != models.AssetStatusPending {
		t.Fatalf("expected pending asset status, got %q", video.AssetStatus)
	}

	stored, err := store.FindVideo(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("expected video record: %v", err)
	}
	if stored.Title != "My First Upload" {
		t.Fatalf("unexpected title %q", stored.Title)
	}

	if len(ingestor.enqueued) != 1 || ingestor.enqueued[0] != video.ID {
		t.Fatalf("expected payload enqueued for %s, got %v", video.ID, ingestor.enqueued)
	}
}

func TestVideoHandlerPublishRequiresTitle(t *testing.T) {
	handler := VideoHandler{Videos: newFakeContentStore(), Storage: newFakeStorage(), Ingestor: &fakeIngestor{}}

	body, contentType := multipartVideo(t, "   ")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(middleware.WithAccount(req.Context(), models.PublicAccount{ID: "owner-1"}))
	rec := httptest.NewRecorder()

	handler.Publish(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestVideoHandlerGetCountsView(t *testing.T) {
	store := newFakeContentStore()
	videoID := uuid.NewString()
	store.videos[videoID] = models.Video{ID: videoID, OwnerID: "owner-1", Title: "Watched", Views: 4}

	handler := VideoHandler{Videos: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+videoID, nil)
	req.SetPathValue("id", videoID)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var video models.Video
	if err := json.NewDecoder(rec.Body).Decode(&video); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if video.Views != 5 {
		t.Fatalf("expected 5 views in response, got %d", video.Views)
	}
	if store.videos[videoID].Views != 5 {
		t.Fatalf("expected view persisted, got %d", store.videos[videoID].Views)
	}
}

func TestVideoHandlerDeleteOwnership(t *testing.T) {
	store := newFakeContentStore()
	videoID := uuid.NewString()
	store.videos[videoID] = models.Video{ID: videoID, OwnerID: "owner-1"}

	handler := VideoHandler{Videos: store}

	deleteAs := func(accountID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+videoID, nil)
		req.SetPathValue("id", videoID)
		req = req.WithContext(middleware.WithAccount(req.Context(), models.PublicAccount{ID: accountID}))
		rec := httptest.NewRecorder()
		handler.Delete(rec, req)
		return rec
	}

	if rec := deleteAs("intruder"); rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: expected status %d got %d", http.StatusForbidden, rec.Code)
	}
	if _, ok := store.videos[videoID]; !ok {
		t.Fatal("video must survive a non-owner delete")
	}

	if rec := deleteAs("owner-1"); rec.Code != http.StatusOK {
		t.Fatalf("owner delete: expected status %d got %d", http.StatusOK, rec.Code)
	}
	if _, ok := store.videos[videoID]; ok {
		t.Fatal("video must be gone after owner delete")
	}
}

func TestTweetHandlerCreateRejectsLong(t *testing.T) {
	handler := TweetHandler{Tweets: newFakeContentStore()}

	long := make([]byte, maxTweetLength+1)
	for i := range long {
		long[i] = 'a'
	}
	body, _ := json.Marshal(tweetRequest{Content: string(long)})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tweets", bytes.NewReader(body))
	req = req.WithContext(middleware.WithAccount(req.Context(), models.PublicAccount{ID: "owner-1"}))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCommentHandlerCreateMissingVideo(t *testing.T) {
	handler := CommentHandler{Comments: newFakeContentStore()}

	body, _ := json.Marshal(commentRequest{Content: "first!"})
	videoID := uuid.NewString()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/videos/%s/comments", videoID), bytes.NewReader(body))
	req.SetPathValue("id", videoID)
	req = req.WithContext(middleware.WithAccount(req.Context(), models.PublicAccount{ID: "owner-1"}))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestCommentHandlerCreateAndList(t *testing.T) {
	store := newFakeContentStore()
	videoID := uuid.NewString()
	store.videos[videoID] = models.Video{ID: videoID, OwnerID: "owner-1"}

	handler := CommentHandler{Comments: store}

	body, _ := json.Marshal(commentRequest{Content: "great video"})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/videos/%s/comments", videoID), bytes.NewReader(body))
	req.SetPathValue("id", videoID)
	req = req.WithContext(middleware.WithAccount(req.Context(), models.PublicAccount{ID: "commenter"}))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	listReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/videos/%s/comments", videoID), nil)
	listReq.SetPathValue("id", videoID)
	listRec := httptest.NewRecorder()

	handler.List(listRec, listReq)

	var listResp struct {
		Comments []models.Comment `json:"comments"`
	}
	if err := json.NewDecoder(listRec.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Comments) != 1 || listResp.Comments[0].Content != "great video" {
		t.Fatalf("unexpected comments %+v", listResp.Comments)
	}
}
