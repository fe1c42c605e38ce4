/*
 * @Description: 公共 ID 生成与解码
 */
package idgen

import (
	"fmt"
	mrand "math/rand"
	"sync"

	"github.com/sqids/sqids-go"

	"github.com/binary-blogs/binary-blogs/pkg/constant"
)

// DefaultAlphabet 是默认的字母表
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// EntityType 定义了不同实体在生成公共 ID 时的类型标识。
const (
	EntityTypeUser    uint64 = 1 // 用户实体的类型标识
	EntityTypeBlog    uint64 = 2 // 文章实体的类型标识
	EntityTypeSession uint64 = 3 // 会话实体的类型标识
)

var (
	encoderMu    sync.RWMutex
	sqidsEncoder *sqids.Sqids
)

func init() {
	// 包加载即可用，InitSqidsEncoderWithSeed 可在启动时替换字母表
	if err := InitSqidsEncoderWithSeed(""); err != nil {
		panic(err)
	}
}

// shuffleAlphabet 使用种子打乱字母表
func shuffleAlphabet(seed string) string {
	var seedInt int64
	for i, c := range seed {
		seedInt += int64(c) * int64(i+1)
	}

	r := mrand.New(mrand.NewSource(seedInt))
	alphabet := []rune(DefaultAlphabet)
	r.Shuffle(len(alphabet), func(i, j int) {
		alphabet[i], alphabet[j] = alphabet[j], alphabet[i]
	})
	return string(alphabet)
}

// InitSqidsEncoderWithSeed 使用种子初始化 Sqids 编码器。
// 如果 seed 为空字符串，则使用默认字母表
func InitSqidsEncoderWithSeed(seed string) error {
	alphabet := DefaultAlphabet
	if seed != "" {
		alphabet = shuffleAlphabet(seed)
	}

	s, err := sqids.New(sqids.Options{
		MinLength: 6,
		Alphabet:  alphabet,
	})
	if err != nil {
		return fmt.Errorf("初始化 Sqids 编码器失败: %w", err)
	}

	encoderMu.Lock()
	sqidsEncoder = s
	encoderMu.Unlock()
	return nil
}

// GeneratePublicID 将自增序号与实体类型编码为对外的短 ID
func GeneratePublicID(seq uint64, entityType uint64) (string, error) {
	encoderMu.RLock()
	enc := sqidsEncoder
	encoderMu.RUnlock()

	id, err := enc.Encode([]uint64{seq, entityType})
	if err != nil {
		return "", fmt.Errorf("编码公共ID失败: %w", err)
	}
	return id, nil
}

// DecodePublicID 解码公共 ID
func DecodePublicID(publicID string) (seq uint64, entityType uint64, err error) {
	encoderMu.RLock()
	enc := sqidsEncoder
	encoderMu.RUnlock()

	numbers := enc.Decode(publicID)
	if len(numbers) != 2 {
		return 0, 0, fmt.Errorf("%w: 期望 2 个数字，得到 %d 个", constant.ErrInvalidPublicID, len(numbers))
	}
	return numbers[0], numbers[1], nil
}
