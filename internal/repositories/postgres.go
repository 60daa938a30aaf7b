package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/relationship"
)

// PostgresAccountRepository provides PostgreSQL-backed persistence for accounts.
type PostgresAccountRepository struct {
	pool db.Pool
}

// NewPostgresAccountRepository constructs an account repository backed by PostgreSQL.
func NewPostgresAccountRepository(pool db.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

const accountColumns = `id, username, email, full_name, avatar_url, cover_image_url, password_hash, COALESCE(refresh_fingerprint, ''), created_at, updated_at`

func scanAccount(row pgx.Row) (models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FullName,
		&account.AvatarURL,
		&account.CoverImageURL,
		&account.PasswordHash,
		&account.RefreshFingerprint,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

// Create persists a new account record.
func (r *PostgresAccountRepository) Create(ctx context.Context, account models.Account) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO accounts (id, username, email, full_name, avatar_url, cover_image_url, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, account.ID, account.Username, account.Email, account.FullName, account.AvatarURL, account.CoverImageURL, account.PasswordHash, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert account: %w", mapTimeout(err))
	}

	return nil
}

// FindByID fetches an account by its identifier.
func (r *PostgresAccountRepository) FindByID(ctx context.Context, id string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	account, err := scanAccount(conn.QueryRow(ctx, `
        SELECT `+accountColumns+`
        FROM accounts
        WHERE id = $1
    `, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("select account by id: %w", mapTimeout(err))
	}

	return account, nil
}

// FindByIdentifier fetches an account by email or username.
func (r *PostgresAccountRepository) FindByIdentifier(ctx context.Context, emailOrUsername string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	account, err := scanAccount(conn.QueryRow(ctx, `
        SELECT `+accountColumns+`
        FROM accounts
        WHERE email = $1 OR username = $1
    `, emailOrUsername))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("select account by identifier: %w", mapTimeout(err))
	}

	return account, nil
}

// FindByUsername fetches an account by its unique handle.
func (r *PostgresAccountRepository) FindByUsername(ctx context.Context, username string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	account, err := scanAccount(conn.QueryRow(ctx, `
        SELECT `+accountColumns+`
        FROM accounts
        WHERE username = $1
    `, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("select account by username: %w", mapTimeout(err))
	}

	return account, nil
}

// UpdateDetails modifies the account's display fields.
func (r *PostgresAccountRepository) UpdateDetails(ctx context.Context, id, fullName, email string) error {
	return r.updateColumn(ctx, `
        UPDATE accounts
        SET full_name = $2, email = $3, updated_at = NOW()
        WHERE id = $1
    `, "update account details", id, fullName, email)
}

// UpdatePassword replaces the stored credential hash.
func (r *PostgresAccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateColumn(ctx, `
        UPDATE accounts
        SET password_hash = $2, updated_at = NOW()
        WHERE id = $1
    `, "update account password", id, passwordHash)
}

// UpdateAvatar replaces the account's avatar image reference.
func (r *PostgresAccountRepository) UpdateAvatar(ctx context.Context, id, url string) error {
	return r.updateColumn(ctx, `
        UPDATE accounts
        SET avatar_url = $2, updated_at = NOW()
        WHERE id = $1
    `, "update account avatar", id, url)
}

// UpdateCoverImage replaces the account's cover image reference.
func (r *PostgresAccountRepository) UpdateCoverImage(ctx context.Context, id, url string) error {
	return r.updateColumn(ctx, `
        UPDATE accounts
        SET cover_image_url = $2, updated_at = NOW()
        WHERE id = $1
    `, "update account cover image", id, url)
}

// SetFingerprint overwrites the account's refresh fingerprint in a single
// statement. Overwriting is the rotation/invalidation point: every refresh
// token issued before this call becomes unusable.
func (r *PostgresAccountRepository) SetFingerprint(ctx context.Context, accountID, fingerprint string) error {
	return r.updateColumn(ctx, `
        UPDATE accounts
        SET refresh_fingerprint = $2
        WHERE id = $1
    `, "set refresh fingerprint", accountID, fingerprint)
}

// Fingerprint returns the current refresh fingerprint, empty when cleared.
func (r *PostgresAccountRepository) Fingerprint(ctx context.Context, accountID string) (string, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	var fingerprint string
	err = conn.QueryRow(ctx, `
        SELECT COALESCE(refresh_fingerprint, '')
        FROM accounts
        WHERE id = $1
    `, accountID).Scan(&fingerprint)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("select refresh fingerprint: %w", mapTimeout(err))
	}

	return fingerprint, nil
}

// ClearFingerprint removes the stored fingerprint, revoking all outstanding
// refresh tokens for the account.
func (r *PostgresAccountRepository) ClearFingerprint(ctx context.Context, accountID string) error {
	return r.updateColumn(ctx, `
        UPDATE accounts
        SET refresh_fingerprint = NULL
        WHERE id = $1
    `, "clear refresh fingerprint", accountID)
}

func (r *PostgresAccountRepository) updateColumn(ctx context.Context, query, op string, args ...any) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("%s: %w", op, mapTimeout(err))
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// PostgresContentRepository provides PostgreSQL-backed persistence for
// videos, tweets, and comments.
type PostgresContentRepository struct {
	pool db.Pool
}

// NewPostgresContentRepository constructs a content repository backed by PostgreSQL.
func NewPostgresContentRepository(pool db.Pool) *PostgresContentRepository {
	return &PostgresContentRepository{pool: pool}
}

// CreateVideo stores a new video record.
func (r *PostgresContentRepository) CreateVideo(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	status := video.AssetStatus
	if status == "" {
		status = models.AssetStatusPending
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, asset_url, asset_status, thumbnail_url, views, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.AssetURL, status, video.ThumbnailURL, video.Views, video.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", mapTimeout(err))
	}

	return nil
}

// FindVideo fetches a video by its identifier.
func (r *PostgresContentRepository) FindVideo(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	var video models.Video
	err = conn.QueryRow(ctx, `
        SELECT id, owner_id, title, description, asset_url, asset_status, thumbnail_url, views, created_at
        FROM videos
        WHERE id = $1
    `, id).Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description, &video.AssetURL, &video.AssetStatus, &video.ThumbnailURL, &video.Views, &video.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", mapTimeout(err))
	}

	return video, nil
}

// ListVideosByOwner returns the owner's videos in reverse chronological order.
func (r *PostgresContentRepository) ListVideosByOwner(ctx context.Context, ownerID string) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, owner_id, title, description, asset_url, asset_status, thumbnail_url, views, created_at
        FROM videos
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query videos by owner: %w", mapTimeout(err))
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description, &video.AssetURL, &video.AssetStatus, &video.ThumbnailURL, &video.Views, &video.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", mapTimeout(err))
	}

	return videos, nil
}

// DeleteVideo removes a video record.
func (r *PostgresContentRepository) DeleteVideo(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "videos", "delete video", id)
}

// AddView increments the video's view counter in a single statement.
func (r *PostgresContentRepository) AddView(ctx context.Context, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET views = views + 1
        WHERE id = $1
    `, videoID)
	if err != nil {
		return fmt.Errorf("increment video views: %w", mapTimeout(err))
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkAssetReady records a successfully ingested video asset.
func (r *PostgresContentRepository) MarkAssetReady(ctx context.Context, videoID, assetURL string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET asset_status = $2, asset_url = $3
        WHERE id = $1
    `, videoID, models.AssetStatusReady, assetURL)
	if err != nil {
		return fmt.Errorf("mark video asset ready: %w", mapTimeout(err))
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkAssetFailed records a failed ingestion attempt.
func (r *PostgresContentRepository) MarkAssetFailed(ctx context.Context, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET asset_status = $2, asset_url = ''
        WHERE id = $1
    `, videoID, models.AssetStatusFailed)
	if err != nil {
		return fmt.Errorf("mark video asset failed: %w", mapTimeout(err))
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CreateTweet stores a new tweet record.
func (r *PostgresContentRepository) CreateTweet(ctx context.Context, tweet models.Tweet) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO tweets (id, owner_id, content, created_at)
        VALUES ($1, $2, $3, $4)
    `, tweet.ID, tweet.OwnerID, tweet.Content, tweet.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert tweet: %w", mapTimeout(err))
	}

	return nil
}

// ListTweetsByOwner returns the owner's tweets in reverse chronological order.
func (r *PostgresContentRepository) ListTweetsByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, owner_id, content, created_at
        FROM tweets
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query tweets by owner: %w", mapTimeout(err))
	}
	defer rows.Close()

	var tweets []models.Tweet
	for rows.Next() {
		var tweet models.Tweet
		if err := rows.Scan(&tweet.ID, &tweet.OwnerID, &tweet.Content, &tweet.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		tweets = append(tweets, tweet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", mapTimeout(err))
	}

	return tweets, nil
}

// DeleteTweet removes a tweet record.
func (r *PostgresContentRepository) DeleteTweet(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "tweets", "delete tweet", id)
}

// CreateComment stores a new comment record.
func (r *PostgresContentRepository) CreateComment(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, owner_id, video_id, content, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, comment.ID, comment.OwnerID, comment.VideoID, comment.Content, comment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert comment: %w", mapTimeout(err))
	}

	return nil
}

// ListCommentsByVideo returns a video's comments in chronological order.
func (r *PostgresContentRepository) ListCommentsByVideo(ctx context.Context, videoID string) ([]models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, owner_id, video_id, content, created_at
        FROM comments
        WHERE video_id = $1
        ORDER BY created_at ASC
    `, videoID)
	if err != nil {
		return nil, fmt.Errorf("query comments by video: %w", mapTimeout(err))
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(&comment.ID, &comment.OwnerID, &comment.VideoID, &comment.Content, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", mapTimeout(err))
	}

	return comments, nil
}

// DeleteComment removes a comment record.
func (r *PostgresContentRepository) DeleteComment(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "comments", "delete comment", id)
}

var kindTables = map[relationship.TargetKind]string{
	relationship.KindVideo:   "videos",
	relationship.KindComment: "comments",
	relationship.KindTweet:   "tweets",
	relationship.KindChannel: "accounts",
}

// TargetExists reports whether a toggle target exists for its kind.
func (r *PostgresContentRepository) TargetExists(ctx context.Context, targetID string, kind relationship.TargetKind) (bool, error) {
	table, ok := kindTables[kind]
	if !ok {
		return false, fmt.Errorf("unknown target kind %q", kind)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	var exists bool
	err = conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, targetID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s exists: %w", kind, mapTimeout(err))
	}

	return exists, nil
}

// OwnerOf returns the owning account for a content record. Channel targets
// own themselves.
func (r *PostgresContentRepository) OwnerOf(ctx context.Context, targetID string, kind relationship.TargetKind) (string, error) {
	if kind == relationship.KindChannel {
		return targetID, nil
	}

	table, ok := kindTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown target kind %q", kind)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	var ownerID string
	err = conn.QueryRow(ctx, `SELECT owner_id FROM `+table+` WHERE id = $1`, targetID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("select %s owner: %w", kind, mapTimeout(err))
	}

	return ownerID, nil
}

func (r *PostgresContentRepository) deleteByID(ctx context.Context, table, op, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapTimeout(err))
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ AccountRepository = (*PostgresAccountRepository)(nil)
var _ ContentRepository = (*PostgresContentRepository)(nil)
var _ relationship.TargetDirectory = (*PostgresContentRepository)(nil)
