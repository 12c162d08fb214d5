package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UserProfile 身份服务返回的用户信息
type UserProfile struct {
	UserID          int64           `json:"userId"`
	Document        string          `json:"document"`
	Name            string          `json:"name"`
	LastName        string          `json:"lastName"`
	Email           string          `json:"email"`
	MaxIndebtedness decimal.Decimal `json:"maxIndebtedness"`
	BaseSalary      decimal.Decimal `json:"baseSalary"`
}

// FullName 名与姓拼接并去除首尾空白
func (p UserProfile) FullName() string {
	return strings.TrimSpace(p.Name + " " + p.LastName)
}
