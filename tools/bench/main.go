package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"
)

// -------------------- 统计 --------------------

type APITestStats struct {
	TotalRequests int
	StatusCounts  map[int]int
	Errors        int
	latencies     []time.Duration
	mu            sync.Mutex
}

func NewAPITestStats() *APITestStats {
	return &APITestStats{StatusCounts: make(map[int]int)}
}

func (s *APITestStats) Add(status int, err error, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalRequests++
	if err != nil {
		s.Errors++
		return
	}
	s.StatusCounts[status]++
	s.latencies = append(s.latencies, latency)
}

func (s *APITestStats) Print(took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Printf("耗时: %v 总请求: %d 网络错误: %d\n", took, s.TotalRequests, s.Errors)
	codes := make([]int, 0, len(s.StatusCounts))
	for code := range s.StatusCounts {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Printf("  HTTP %d: %d\n", code, s.StatusCounts[code])
	}
	if len(s.latencies) == 0 {
		return
	}
	sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })
	var sum time.Duration
	for _, l := range s.latencies {
		sum += l
	}
	p95 := s.latencies[len(s.latencies)*95/100]
	fmt.Printf("延迟 平均: %v p95: %v 最大: %v 最小: %v\n",
		sum/time.Duration(len(s.latencies)), p95, s.latencies[len(s.latencies)-1], s.latencies[0])
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(len(s.latencies))/took.Seconds())
	}
}

// -------------------- HTTP --------------------

var client = &http.Client{Timeout: 8 * time.Second}

func send(method, url, token string, body interface{}) (int, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp.StatusCode, out.Bytes(), nil
}

type session struct {
	ID    string
	Token string
}

// register 注册一个临时用户并返回其会话
func register(base, tag string) (*session, error) {
	email := fmt.Sprintf("bench-%s-%d@irma.test", tag, time.Now().UnixNano())
	code, body, err := send(http.MethodPost, base+"/api/auth/register", "", map[string]string{
		"name":     "Bench " + tag,
		"email":    email,
		"password": "bench-password",
	})
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("register %s: HTTP %d %s", tag, code, body)
	}
	var resp struct {
		Data struct {
			User struct {
				ID string `json:"id"`
			} `json:"user"`
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return &session{ID: resp.Data.User.ID, Token: resp.Data.Token}, nil
}

// runDuplicateRequests 同一对用户并发发起相同的好友申请，应当恰好成功一次
func runDuplicateRequests(base string, concurrency int) bool {
	fmt.Println("\n=== 并发重复好友申请 ===")
	a, err := register(base, "a")
	if err != nil {
		fmt.Println("注册失败:", err)
		return false
	}
	b, err := register(base, "b")
	if err != nil {
		fmt.Println("注册失败:", err)
		return false
	}

	stats := NewAPITestStats()
	var wg sync.WaitGroup
	ready := make(chan struct{})
	start := time.Now()
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ready
			t := time.Now()
			code, _, err := send(http.MethodPost, base+"/api/friends", a.Token, map[string]string{"targetId": b.ID})
			stats.Add(code, err, time.Since(t))
		}()
	}
	close(ready)
	wg.Wait()
	stats.Print(time.Since(start))

	ok := stats.StatusCounts[http.StatusOK] == 1 &&
		stats.StatusCounts[http.StatusConflict] == concurrency-1
	if ok {
		fmt.Println("结果: 正确，仅一次成功，其余均为409")
	} else {
		fmt.Println("结果: 异常，期望 1 次200 与", concurrency-1, "次409")
	}
	return ok
}

// runReadBench 公开列表接口的并发读取
func runReadBench(base string, concurrency, perGoroutine int) {
	fmt.Println("\n=== 列表接口并发读取 ===")
	fmt.Printf("并发: %d 每协程请求: %d\n", concurrency, perGoroutine)

	endpoints := []string{"/api/members", "/api/instructors", "/health"}
	stats := NewAPITestStats()
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				t := time.Now()
				code, _, err := send(http.MethodGet, base+endpoints[(id+j)%len(endpoints)], "", nil)
				stats.Add(code, err, time.Since(t))
			}
		}(i)
	}
	wg.Wait()
	stats.Print(time.Since(start))
	fmt.Printf("Goroutines(客户端): %d\n", runtime.NumGoroutine())
}

// -------------------- 入口 --------------------

func argInt(i, def int) int {
	if len(os.Args) > i {
		if v, err := strconv.Atoi(os.Args[i]); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	concurrency := argInt(1, 20)
	perGoroutine := argInt(2, 10)

	baseURL := os.Getenv("BENCH_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	fmt.Println("=== IRMA Verse 并发测试 ===")
	fmt.Printf("开始时间: %s 目标: %s\n", time.Now().Format("2006-01-02 15:04:05"), baseURL)

	ok := runDuplicateRequests(baseURL, concurrency)
	runReadBench(baseURL, concurrency, perGoroutine)

	fmt.Println("\n=== 测试完成 ===")
	if !ok {
		os.Exit(1)
	}
}
