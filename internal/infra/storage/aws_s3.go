// internal/infra/storage/aws_s3.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options 是 S3 备份目标的配置
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string // 自定义 endpoint，兼容 MinIO 等 S3 协议存储
	Prefix    string
	AccessKey string
	SecretKey string
}

// AWSS3Provider 实现了 IStorageProvider 接口，把对象保存到 S3 存储桶
type AWSS3Provider struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewAWSS3Provider 创建 S3 客户端。未配置 AccessKey 时使用默认凭证链。
func NewAWSS3Provider(ctx context.Context, opts S3Options) (IStorageProvider, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("AWS S3备份目标缺少存储桶名称")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1" // 默认区域
	}

	var loadOpts []func(*config.LoadOptions) error
	loadOpts = append(loadOpts, config.WithRegion(region))
	if opts.AccessKey != "" {
		if opts.SecretKey == "" {
			return nil, fmt.Errorf("AWS S3备份目标缺少SecretKey")
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.Printf("[AWS S3] 创建配置失败: %v", err)
		return nil, fmt.Errorf("创建AWS S3配置失败: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true // 对于自定义endpoint通常需要path-style
		}
	})

	log.Printf("[AWS S3] 成功创建客户端 - 区域: %s, 存储桶: %s", region, opts.Bucket)
	return &AWSS3Provider{
		client: client,
		bucket: opts.Bucket,
		prefix: normalizePrefix(opts.Prefix),
	}, nil
}

// normalizePrefix 去掉首部斜杠并保证以斜杠结尾（S3对象键不应该以/开头）
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func (p *AWSS3Provider) Name() string {
	return "s3"
}

func (p *AWSS3Provider) objectKey(name string) string {
	return p.prefix + name
}

func (p *AWSS3Provider) Upload(ctx context.Context, file io.Reader, name string) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(p.objectKey(name)),
		Body:        file,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("上传到AWS S3失败: %w", err)
	}
	log.Printf("[AWS S3] 已上传 %s", p.objectKey(name))
	return nil
}

func (p *AWSS3Provider) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	output, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.objectKey(name)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("从AWS S3获取对象失败: %w", err)
	}
	return output.Body, nil
}

// List 分页列出前缀下的直接子对象
func (p *AWSS3Provider) List(ctx context.Context) ([]FileInfo, error) {
	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(p.bucket),
		Prefix:    aws.String(p.prefix),
		Delimiter: aws.String("/"),
	})

	var fileInfos []FileInfo
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("列出AWS S3对象失败: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			name := strings.TrimPrefix(*obj.Key, p.prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}

			var fileSize int64
			if obj.Size != nil {
				fileSize = *obj.Size
			}
			var modTime time.Time
			if obj.LastModified != nil {
				modTime = *obj.LastModified
			}
			fileInfos = append(fileInfos, FileInfo{Name: name, Size: fileSize, ModTime: modTime})
		}
	}

	sort.Slice(fileInfos, func(i, j int) bool { return fileInfos[i].Name < fileInfos[j].Name })
	return fileInfos, nil
}

func (p *AWSS3Provider) Delete(ctx context.Context, name string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.objectKey(name)),
	})
	if err != nil {
		return fmt.Errorf("从AWS S3删除对象失败: %w", err)
	}
	return nil
}
