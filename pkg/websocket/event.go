package websocket

// 实时事件名，与前端监听的事件一一对应
const (
	EventLibraryUpdate       = "libraryUpdate"
	EventPartnerUpdate       = "partnerUpdate"
	EventNotificationUpdate  = "notificationUpdate"
	EventSharedLibraryUpdate = "sharedLibraryUpdate"
)

// Event 推送事件信封
// 只携带事件名与受影响的资源标识，不携带数据本体；
// 客户端据此做精确的重新拉取，而不是信任推送载荷
type Event struct {
	Event    string `json:"event"`
	Resource string `json:"resource,omitempty"`
}
