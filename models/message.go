package models

import "encoding/json"

// ResultUpdate 定义通过WebSocket推送的实时结果消息格式
type ResultUpdate struct {
	Type    string      `json:"type"`    // 消息类型，目前只有 RESULT_UPDATE
	PollID  uint        `json:"poll_id"` // 投票ID
	Payload interface{} `json:"payload"` // 最新的统计结果
}

// ToJSON 将消息转换为JSON字节数组
func (m *ResultUpdate) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
