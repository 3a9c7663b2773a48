package naver

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxSisePages 10 rows per page, ~25 years of sessions
const maxSisePages = 600

var siseDateRe = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)

// fetchDailyPages walks sise_day pages (newest first) until rows predate from
func (c *Client) fetchDailyPages(ctx context.Context, stockCode string, from time.Time) ([]PriceData, error) {
	var all []PriceData
	noDataPages := 0

	for page := 1; page <= maxSisePages; page++ {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		params := url.Values{}
		params.Set("code", stockCode)
		params.Set("page", strconv.Itoa(page))

		html, err := c.fetchText(ctx, c.pageURL, "/item/sise_day.naver", params)
		if err != nil {
			return all, err
		}

		rows, hasMore, err := parseSiseDay(html)
		if err != nil {
			return all, fmt.Errorf("parse sise_day page %d: %w", page, err)
		}
		all = append(all, rows...)

		// 기준일보다 이전 데이터면 종료
		if len(rows) > 0 && rows[len(rows)-1].TradeDate.Before(from) {
			break
		}

		// 더 이상 페이지 없으면 종료
		if !hasMore {
			break
		}

		// 연속으로 데이터 없으면 종료
		if len(rows) == 0 {
			noDataPages++
			if noDataPages >= 3 {
				break
			}
		} else {
			noDataPages = 0
		}
	}

	return all, nil
}

// parseSiseDay parses one sise_day page
// 컬럼: 날짜 | 종가 | 전일비 | 시가 | 고가 | 저가 | 거래량
func parseSiseDay(html string) ([]PriceData, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false, err
	}

	var rows []PriceData
	doc.Find("table.type2 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		if !siseDateRe.MatchString(dateText) {
			return
		}
		tradeDate, err := time.Parse("2006.01.02", dateText)
		if err != nil {
			return
		}

		closePrice := parseNum(cells.Eq(1).Text())
		if closePrice <= 0 {
			return
		}

		rows = append(rows, PriceData{
			TradeDate:  tradeDate,
			ClosePrice: closePrice,
			OpenPrice:  parseNum(cells.Eq(3).Text()),
			HighPrice:  parseNum(cells.Eq(4).Text()),
			LowPrice:   parseNum(cells.Eq(5).Text()),
			Volume:     parseNum(cells.Eq(6).Text()),
		})
	})

	// 다음 페이지 존재 여부 확인
	hasMore := doc.Find(".pgRR").Length() > 0
	return rows, hasMore, nil
}

func parseNum(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
