package util

import (
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	nodeErr  error
)

// InitSnowflake 初始化雪花节点，进程启动时调用一次。
// nodeId 取值 0~1023，多实例部署时各实例必须不同。
func InitSnowflake(nodeId int64) error {
	nodeOnce.Do(func() {
		node, nodeErr = snowflake.NewNode(nodeId)
	})
	return nodeErr
}

// NextId 生成一个雪花 id，未初始化时兜底用节点 0
func NextId() int64 {
	if node == nil {
		_ = InitSnowflake(0)
	}
	return node.Generate().Int64()
}

// SnowflakeObjectName 生成对象存储文件名，保留原始扩展名
func SnowflakeObjectName(originalName string) string {
	return strconv.FormatInt(NextId(), 10) + filepath.Ext(originalName)
}

// SyntheticDeviceId 为无设备注册的账号生成占位设备标识。
// 前缀区分于真实设备上报的 id，便于排查。
func SyntheticDeviceId() string {
	return fmt.Sprintf("srv-%d", NextId())
}
