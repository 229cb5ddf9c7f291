package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"learnpath-backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxAssetSize caps a single lesson asset (videos included).
const MaxAssetSize = 512 * 1024 * 1024

var allowedExtensions = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".pdf":  "application/pdf",
	".md":   "text/markdown",
	".txt":  "text/plain",
	".zip":  "application/zip",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

type assetRepo struct {
	db     *mongo.Database
	bucket *gridfs.Bucket
}

func NewAssetRepository(db *mongo.Database) (domain.AssetRepository, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("lesson_assets"))
	if err != nil {
		return nil, fmt.Errorf("failed to create GridFS bucket: %w", err)
	}
	return &assetRepo{db: db, bucket: bucket}, nil
}

func (r *assetRepo) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, lessonID string, uploadedBy uint) (*domain.FileInfo, error) {
	if header.Size > MaxAssetSize {
		return nil, fmt.Errorf("file too large, max %dMB", MaxAssetSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return nil, domain.ErrFileTypeForbidden
	}

	filename := fmt.Sprintf("%s_%d%s", lessonID, time.Now().UnixNano(), ext)
	uploadOpts := options.GridFSUpload().SetMetadata(bson.M{
		"original_name": header.Filename,
		"uploaded_by":   uploadedBy,
		"lesson_id":     lessonID,
		"content_type":  contentType,
	})

	objectID, err := r.bucket.UploadFromStream(filename, file, uploadOpts)
	if err != nil {
		return nil, fmt.Errorf("upload asset: %w", err)
	}

	return &domain.FileInfo{
		ID:          objectID.Hex(),
		Filename:    filename,
		ContentType: contentType,
		Size:        header.Size,
	}, nil
}

func (r *assetRepo) Download(ctx context.Context, fileID string) (io.ReadCloser, *domain.FileInfo, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, domain.ErrFileNotFound
	}

	var doc struct {
		Filename string `bson:"filename"`
		Length   int64  `bson:"length"`
		Metadata bson.M `bson:"metadata"`
	}
	err = r.db.Collection("lesson_assets.files").FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, domain.ErrFileNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	stream, err := r.bucket.OpenDownloadStream(objectID)
	if err != nil {
		return nil, nil, fmt.Errorf("open asset: %w", err)
	}

	contentType, _ := doc.Metadata["content_type"].(string)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return stream, &domain.FileInfo{
		ID:          fileID,
		Filename:    doc.Filename,
		ContentType: contentType,
		Size:        doc.Length,
	}, nil
}
