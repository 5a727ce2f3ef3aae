package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cdp/scansvc/internal/model"
)

// PubSub Redis 发布/订阅客户端
type PubSub struct {
	client *redis.Client
}

// NewPubSub 创建 PubSub 实例
func NewPubSub(addr, password string, db int) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &PubSub{
		client: client,
	}, nil
}

// PublishScanComplete 发布扫描完成通知
// 参数：
//   - ctx: 上下文
//   - channel: Redis 频道名称（建议：leaf_scan_complete）
//   - notification: 通知消息
func (p *PubSub) PublishScanComplete(
	ctx context.Context,
	channel string,
	notification *model.ScanNotification,
) error {
	msgJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := p.client.Publish(ctx, channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// WaitForScanResult 等待指定扫描的完成通知（Smart Wait）
// 超时或订阅失败返回 error；频道上可能混着其它扫描的通知，按 scan_id 过滤。
func (p *PubSub) WaitForScanResult(
	ctx context.Context,
	channel string,
	scanID int64,
	timeout time.Duration,
) (*model.ScanNotification, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sub := p.client.Subscribe(waitCtx, channel)
	defer sub.Close()

	// 确认订阅建立，避免漏掉早到的通知
	if _, err := sub.Receive(waitCtx); err != nil {
		return nil, fmt.Errorf("subscribe failed: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("wait for scan result timed out: scan_id=%d", scanID)
		case msg, ok := <-ch:
			if !ok {
				return nil, fmt.Errorf("subscription channel closed")
			}

			var notification model.ScanNotification
			if err := json.Unmarshal([]byte(msg.Payload), &notification); err != nil {
				// 非法消息直接跳过
				continue
			}

			if notification.ScanID == scanID {
				return &notification, nil
			}
		}
	}
}

// Subscribe 订阅 Redis 频道（用于测试）
func (p *PubSub) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return p.client.Subscribe(ctx, channel)
}

// Close 关闭 Redis 连接
func (p *PubSub) Close() error {
	return p.client.Close()
}
