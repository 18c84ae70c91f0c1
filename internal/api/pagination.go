package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageResponse 列表响应：count/next/previous/results，到头时 next/previous 为 null
type PageResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// pageParams 解析 page / page_size，缺省为 1 / 0（由 service 取默认值）；非数字的 page 视为非法
func pageParams(c *gin.Context) (page, pageSize int, ok bool) {
	page = 1
	if raw := c.Query("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, false
		}
		page = p
	}
	if raw := c.Query("page_size"); raw != "" {
		if ps, err := strconv.Atoi(raw); err == nil {
			pageSize = ps
		}
	}
	return page, pageSize, true
}

// pageURL 以当前请求地址为基础替换 page 参数；第 1 页去掉 page 参数
func pageURL(r *http.Request, page int) *string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}

func newPageResponse(r *http.Request, count int64, page int, hasNext, hasPrevious bool, results interface{}) PageResponse {
	resp := PageResponse{Count: count, Results: results}
	if hasNext {
		resp.Next = pageURL(r, page+1)
	}
	if hasPrevious {
		resp.Previous = pageURL(r, page-1)
	}
	return resp
}
