// Package clock 提供业务时区时钟
package clock

import (
	"fmt"
	"time"
)

// ZonedClock 以固定时区返回当前时间
type ZonedClock struct {
	loc *time.Location
	now func() time.Time
}

// New 按 IANA 时区名创建时钟
func New(timezone string) (*ZonedClock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &ZonedClock{loc: loc, now: time.Now}, nil
}

func (c *ZonedClock) Now() time.Time {
	return c.now().In(c.loc)
}

// Location 业务时区
func (c *ZonedClock) Location() *time.Location {
	return c.loc
}
