package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/tonimelisma/dat/internal/daterrors"
	"github.com/tonimelisma/dat/internal/inventory"
)

// S3Adapter implements Adapter against a real S3 bucket/prefix, using
// the AWS SDK for single-object operations (fetch/create/remove) and
// the aws CLI for the bulk include-list sync.
type S3Adapter struct {
	id      ID
	profile string
	region  string
	logger  *slog.Logger

	client *s3.S3
}

// New constructs an S3Adapter for id (bucket or bucket/prefix). The
// underlying S3 client and AWS session are created lazily on first use,
// matching nicolagi/muscle's ensureClient idiom.
func New(id ID, profile, region string, logger *slog.Logger) *S3Adapter {
	if logger == nil {
		logger = slog.Default()
	}

	return &S3Adapter{id: id, profile: profile, region: region, logger: logger}
}

func (a *S3Adapter) ensureClient() error {
	if a.client != nil {
		return nil
	}

	cfg := &aws.Config{Region: aws.String(a.region)}
	if a.profile != "" {
		cfg.Credentials = credentials.NewSharedCredentials("", a.profile)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return daterrors.Wrap(daterrors.ErrTransportAuth, daterrors.NotLoggedInHint)
	}

	a.client = s3.New(sess)

	return nil
}

// FetchMaster downloads and parses <prefix>/.dat/master.
func (a *S3Adapter) FetchMaster(ctx context.Context) (*inventory.Inventory, error) {
	if err := a.ensureClient(); err != nil {
		return nil, err
	}

	key := a.id.Key(MasterKey)

	out, err := a.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.id.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}

		if isAuthError(err) {
			return nil, daterrors.Wrap(daterrors.ErrTransportAuth, daterrors.NotLoggedInHint)
		}

		return nil, fmt.Errorf("%w: fetching %s: %w", daterrors.ErrTransportOther, key, err)
	}
	defer func() {
		if cerr := out.Body.Close(); cerr != nil {
			a.logger.Warn("store: closing master response body", "error", cerr)
		}
	}()

	return inventory.Parse(out.Body)
}

// CreatePrefix creates the bucket when id.Bucket does not already
// exist. A bare-bucket id creates that bucket; a bucket/prefix id needs
// no bucket creation beyond the bucket itself (prefixes are not real
// objects in S3).
func (a *S3Adapter) CreatePrefix(ctx context.Context) error {
	if err := a.ensureClient(); err != nil {
		return err
	}

	_, err := a.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.id.Bucket),
	})
	if err == nil {
		return nil // idempotent: already exists
	}

	if !isNotFound(err) {
		if isAuthError(err) {
			return daterrors.Wrap(daterrors.ErrTransportAuth, daterrors.NotLoggedInHint)
		}

		return fmt.Errorf("%w: checking bucket %s: %w", daterrors.ErrTransportOther, a.id.Bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(a.id.Bucket)}
	if a.region != "" && a.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(a.region),
		}
	}

	if _, err := a.client.CreateBucketWithContext(ctx, input); err != nil {
		return fmt.Errorf("%w: creating bucket %s: %w", daterrors.ErrTransportOther, a.id.Bucket, err)
	}

	return nil
}

// RemovePrefix recursively deletes every object under the prefix, and
// the bucket itself when the id is bare.
func (a *S3Adapter) RemovePrefix(ctx context.Context) error {
	if err := a.ensureClient(); err != nil {
		return err
	}

	prefix := ""
	if a.id.Prefix != "" {
		prefix = a.id.Prefix + "/"
	}

	var continuation *string

	for {
		out, err := a.client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(a.id.Bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return fmt.Errorf("%w: listing %s: %w", daterrors.ErrTransportOther, a.id.Bucket, err)
		}

		if len(out.Contents) > 0 {
			var ids []*s3.ObjectIdentifier
			for _, o := range out.Contents {
				ids = append(ids, &s3.ObjectIdentifier{Key: o.Key})
			}

			if _, err := a.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(a.id.Bucket),
				Delete: &s3.Delete{Objects: ids},
			}); err != nil {
				return fmt.Errorf("%w: deleting objects under %s: %w", daterrors.ErrTransportOther, prefix, err)
			}
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}

		continuation = out.NextContinuationToken
	}

	if a.id.Prefix == "" {
		if _, err := a.client.DeleteBucketWithContext(ctx, &s3.DeleteBucketInput{
			Bucket: aws.String(a.id.Bucket),
		}); err != nil {
			return fmt.Errorf("%w: deleting bucket %s: %w", daterrors.ErrTransportOther, a.id.Bucket, err)
		}
	}

	return nil
}

// ListRemote lists every object under the prefix except the master
// object itself, used by repair-master to rebuild the master inventory
// from ground truth. It does not compute fingerprints (S3 ETags are not
// guaranteed to be MD5 for multipart uploads); repair-master instead
// downloads each object to fingerprint it, via SyncDownload.
func (a *S3Adapter) ListRemote(ctx context.Context) ([]string, error) {
	if err := a.ensureClient(); err != nil {
		return nil, err
	}

	prefix := ""
	if a.id.Prefix != "" {
		prefix = a.id.Prefix + "/"
	}

	masterKey := a.id.Key(MasterKey)

	var paths []string

	var continuation *string

	for {
		out, err := a.client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(a.id.Bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: listing %s: %w", daterrors.ErrTransportOther, a.id.Bucket, err)
		}

		for _, o := range out.Contents {
			key := aws.StringValue(o.Key)
			if key == masterKey {
				continue
			}

			rel := key
			if prefix != "" {
				rel = key[len(prefix):]
			}

			paths = append(paths, rel)
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}

		continuation = out.NextContinuationToken
	}

	return paths, nil
}

func isNotFound(err error) bool {
	var rfErr awserr.RequestFailure
	if errors.As(err, &rfErr) {
		if rfErr.StatusCode() == http.StatusNotFound {
			return true
		}
	}

	var aErr awserr.Error
	if errors.As(err, &aErr) {
		return aErr.Code() == s3.ErrCodeNoSuchKey || aErr.Code() == s3.ErrCodeNoSuchBucket
	}

	return false
}

func isAuthError(err error) bool {
	var aErr awserr.Error
	if errors.As(err, &aErr) {
		switch aErr.Code() {
		case "ExpiredToken", "InvalidAccessKeyId", "SignatureDoesNotMatch", "AccessDenied", "NoCredentialProviders":
			return true
		}
	}

	return false
}
