package service

import (
	"alshuail-fund/pkg/mqtt"
)

// MQTTPush publishes member notifications on fund/notifications/<memberID>.
type MQTTPush struct {
	client      *mqtt.Client
	topicPrefix string
}

var _ PushPublisher = (*MQTTPush)(nil)

func NewMQTTPush(client *mqtt.Client, topicPrefix string) *MQTTPush {
	return &MQTTPush{client: client, topicPrefix: topicPrefix}
}

func (p *MQTTPush) PublishMemberEvent(memberID string, payload []byte) error {
	return p.client.Publish(p.topicPrefix+"/"+memberID, 0, false, payload)
}
