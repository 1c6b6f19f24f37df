package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

// 场景压测：注册若干对账号并绑定为伴侣，然后并发制造片单/观看/评分流量
// 用法: bench [基础URL] [伴侣对数] [每账号请求数]

type LatencyStats struct {
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	AverageLatency     time.Duration
	MaxLatency         time.Duration
	MinLatency         time.Duration
	mu                 sync.Mutex
}

func (s *LatencyStats) Add(success bool, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalRequests++
	if success {
		s.SuccessfulRequests++
		if s.AverageLatency == 0 {
			s.AverageLatency = latency
			s.MaxLatency = latency
			s.MinLatency = latency
		} else {
			s.AverageLatency = (s.AverageLatency + latency) / 2
			if latency > s.MaxLatency {
				s.MaxLatency = latency
			}
			if latency < s.MinLatency {
				s.MinLatency = latency
			}
		}
	} else {
		s.FailedRequests++
	}
}

var httpClient = &http.Client{Timeout: 8 * time.Second}

// doJSON 发送JSON请求，返回解析后的data字段
func doJSON(method, url, token string, body interface{}) (map[string]interface{}, int, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var envelope struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	return envelope.Data, resp.StatusCode, nil
}

type account struct {
	username string
	token    string
}

// registerAccount 注册账号并返回token
func registerAccount(base, username string) (*account, error) {
	data, code, err := doJSON("POST", base+"/api/auth/register", "", map[string]interface{}{
		"username": username,
		"name":     "Bench " + username,
		"email":    username + "@bench.local",
		"password": "bench-pass-1",
	})
	if err != nil {
		return nil, err
	}
	if code != http.StatusCreated && code != http.StatusOK {
		return nil, fmt.Errorf("register %s: status %d", username, code)
	}
	token, _ := data["access_token"].(string)
	if token == "" {
		return nil, fmt.Errorf("register %s: token missing", username)
	}
	return &account{username: username, token: token}, nil
}

// linkPartners b向a发出邀请，a接受
func linkPartners(base string, a, b *account) error {
	if _, code, err := doJSON("POST", base+"/api/partner/request", b.token, map[string]interface{}{
		"username": a.username,
	}); err != nil || code >= 300 {
		return fmt.Errorf("request: status %d err %v", code, err)
	}

	data, code, err := doJSON("GET", base+"/api/notifications", a.token, nil)
	if err != nil || code >= 300 {
		return fmt.Errorf("notifications: status %d err %v", code, err)
	}
	notifications, _ := data["notifications"].([]interface{})
	for _, raw := range notifications {
		n, _ := raw.(map[string]interface{})
		if n["type"] == "partner_request" && n["status"] == "pending" {
			id := int(n["id"].(float64))
			if _, code, err := doJSON("POST", base+"/api/partner/accept", a.token, map[string]interface{}{
				"notificationId": id,
			}); err != nil || code >= 300 {
				return fmt.Errorf("accept: status %d err %v", code, err)
			}
			return nil
		}
	}
	return fmt.Errorf("no pending invite found for %s", a.username)
}

// trafficLoop 制造片单流量：标记观看、收藏、评分、读片单
func trafficLoop(base string, acc *account, offset, requests int, stats *LatencyStats) {
	for i := 0; i < requests; i++ {
		contentID := strconv.Itoa(100000 + offset*1000 + i)
		movie := map[string]interface{}{
			"id":           contentID,
			"title":        "Bench Movie " + contentID,
			"type":         "movie",
			"vote_average": 7.5,
		}

		steps := []func() (int, error){
			func() (int, error) {
				_, code, err := doJSON("POST", base+"/api/watched/movie/"+contentID, acc.token, map[string]interface{}{
					"watchedType": "user",
					"movieData":   movie,
				})
				return code, err
			},
			func() (int, error) {
				_, code, err := doJSON("POST", base+"/api/library/favorites", acc.token, movie)
				return code, err
			},
			func() (int, error) {
				_, code, err := doJSON("POST", base+"/api/reviews/movie/"+contentID, acc.token, map[string]interface{}{
					"rating": (i % 5) + 1,
				})
				return code, err
			},
			func() (int, error) {
				_, code, err := doJSON("GET", base+"/api/library", acc.token, nil)
				return code, err
			},
		}
		for _, step := range steps {
			start := time.Now()
			code, err := step()
			stats.Add(err == nil && code < 300, time.Since(start))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func main() {
	base := "http://localhost:5000"
	pairs := 5
	requests := 10

	if len(os.Args) > 1 {
		base = os.Args[1]
	}
	if len(os.Args) > 2 {
		if v, err := strconv.Atoi(os.Args[2]); err == nil {
			pairs = v
		}
	}
	if len(os.Args) > 3 {
		if v, err := strconv.Atoi(os.Args[3]); err == nil {
			requests = v
		}
	}

	fmt.Println("=== SRMDB 场景压测 ===")
	fmt.Printf("目标: %s 伴侣对数: %d 每账号请求轮数: %d\n", base, pairs, requests)
	fmt.Printf("开始时间: %s\n", time.Now().Format("2006-01-02 15:04:05"))

	// 1. 注册并绑定伴侣对
	suffix := time.Now().UnixNano() % 1000000
	accounts := make([]*account, 0, pairs*2)
	for i := 0; i < pairs; i++ {
		a, err := registerAccount(base, fmt.Sprintf("bench_a_%d_%d", suffix, i))
		if err != nil {
			fmt.Println("注册失败:", err)
			return
		}
		b, err := registerAccount(base, fmt.Sprintf("bench_b_%d_%d", suffix, i))
		if err != nil {
			fmt.Println("注册失败:", err)
			return
		}
		if err := linkPartners(base, a, b); err != nil {
			fmt.Println("绑定伴侣失败:", err)
			return
		}
		accounts = append(accounts, a, b)
	}
	fmt.Printf("已就绪 %d 个账号（%d 对伴侣）\n", len(accounts), pairs)

	// 2. 并发流量
	stats := &LatencyStats{}
	var wg sync.WaitGroup
	start := time.Now()
	for i, acc := range accounts {
		wg.Add(1)
		go func(offset int, acc *account) {
			defer wg.Done()
			trafficLoop(base, acc, offset, requests, stats)
		}(i, acc)
	}
	wg.Wait()
	took := time.Since(start)

	// 3. 报告
	fmt.Println("\n=== 压测结果 ===")
	fmt.Printf("耗时: %v\n", took)
	fmt.Printf("总请求: %d 成功: %d 失败: %d\n", stats.TotalRequests, stats.SuccessfulRequests, stats.FailedRequests)
	fmt.Printf("延迟 平均: %v 最大: %v 最小: %v\n", stats.AverageLatency, stats.MaxLatency, stats.MinLatency)
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(stats.SuccessfulRequests)/took.Seconds())
	}
	if stats.TotalRequests > 0 {
		fmt.Printf("成功率: %.2f%%\n", float64(stats.SuccessfulRequests)/float64(stats.TotalRequests)*100)
	}
	fmt.Println("\n=== 测试完成 ===")
}
