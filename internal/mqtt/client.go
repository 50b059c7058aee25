package mqtt

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	publishTimeout = 5 * time.Second
	qosAtLeastOnce = byte(1)
)

// Client MQTT 客户端封装
type Client struct {
	client   paho.Client
	clientID string
	logger   *zap.Logger
}

// NewClient 创建并连接 MQTT 客户端，支持 ws/wss/mqtt/mqtts
func NewClient(mqttURL, clientID string, logger *zap.Logger) (*Client, error) {
	brokerURL, parsed, err := brokerAddress(mqttURL)
	if err != nil {
		return nil, err
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(time.Second)
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetMaxReconnectInterval(10 * time.Second)

	if parsed.Scheme == "wss" || parsed.Scheme == "mqtts" {
		// 允许自签名证书
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	}

	if parsed.User != nil {
		opts.SetUsername(parsed.User.Username())
		password, _ := parsed.User.Password()
		opts.SetPassword(password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	})
	opts.SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Debug("MQTT reconnecting")
	})

	firstConnect := true
	opts.SetOnConnectHandler(func(_ paho.Client) {
		if firstConnect {
			firstConnect = false
			return
		}
		logger.Info("MQTT reconnected")
	})

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	logger.Info("MQTT client connected",
		zap.String("broker", cleanURL(mqttURL)),
		zap.String("protocol", parsed.Scheme),
		zap.String("client_id", clientID))

	return &Client{client: client, clientID: clientID, logger: logger}, nil
}

// brokerAddress 把 mqtt/mqtts 转换为 paho 识别的 tcp/ssl
func brokerAddress(mqttURL string) (string, *url.URL, error) {
	parsed, err := url.Parse(mqttURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid MQTT URL: %w", err)
	}

	switch parsed.Scheme {
	case "ws", "wss", "tcp", "ssl":
		return mqttURL, parsed, nil
	case "mqtt":
		return strings.Replace(mqttURL, "mqtt://", "tcp://", 1), parsed, nil
	case "mqtts":
		return strings.Replace(mqttURL, "mqtts://", "ssl://", 1), parsed, nil
	default:
		return "", nil, fmt.Errorf("unsupported protocol scheme: %q (supported: ws, wss, mqtt, mqtts)", parsed.Scheme)
	}
}

// Publish 发布消息，等待确认但不会无限阻塞
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	token := c.client.Publish(topic, qosAtLeastOnce, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to topic %s timed out after %s", topic, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}

	c.logger.Debug("Published MQTT message",
		zap.String("topic", topic),
		zap.Int("size", len(payload)),
		zap.Bool("retained", retained))
	return nil
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Disconnect 断开连接
func (c *Client) Disconnect(quiesce uint) {
	c.client.Disconnect(quiesce)
	c.logger.Debug("MQTT client disconnected")
}

// cleanURL 去掉日志中的凭据
func cleanURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword("***", "***")
	}
	return parsed.String()
}
