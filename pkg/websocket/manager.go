package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Client 代表一个WebSocket连接会话
// 同一账号可同时存在多个会话（多端/多标签页）
// SessionID: 会话唯一标识
// Send: 发送消息的通道

type Client struct {
	UserID    uint
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
}

// Manager 管理所有在线账号的WebSocket会话
// 按账号ID分房间，推送时对该账号全部会话广播
// 推送为尽力而为：会话缓冲满或已断开时直接丢弃

type Manager struct {
	sessions map[uint]map[string]*Client // userID -> sessionID -> client
	lock     sync.RWMutex
}

var manager = &Manager{
	sessions: make(map[uint]map[string]*Client),
}

// GetManager 获取全局WebSocket管理器
func GetManager() *Manager {
	return manager
}

// AddClient 添加新会话
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.sessions[client.UserID] == nil {
		m.sessions[client.UserID] = make(map[string]*Client)
	}
	m.sessions[client.UserID][client.SessionID] = client
}

// RemoveClient 移除会话
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if clients, ok := m.sessions[client.UserID]; ok {
		if c, ok := clients[client.SessionID]; ok {
			close(c.Send)
			delete(clients, client.SessionID)
		}
		if len(clients) == 0 {
			delete(m.sessions, client.UserID)
		}
	}
}

// Emit 向指定账号的全部在线会话广播事件（实现 ports.Notifier）
func (m *Manager) Emit(userID uint, event, resource string) {
	payload, err := json.Marshal(Event{Event: event, Resource: resource})
	if err != nil {
		return
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	for _, client := range m.sessions[userID] {
		select {
		case client.Send <- payload:
		default:
			// 发送失败，可能连接已断开
		}
	}
}

// IsOnline 判断账号是否有在线会话
func (m *Manager) IsOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.sessions[userID]) > 0
}

// SessionCount 在线会话总数
func (m *Manager) SessionCount() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	total := 0
	for _, clients := range m.sessions {
		total += len(clients)
	}
	return total
}
