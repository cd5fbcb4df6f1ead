package domain

import (
	"sort"
	"time"
)

// ChainPredicate 期权链过滤谓词，针对合约静态属性的纯函数
type ChainPredicate func(*Contract) bool

// FilterChain 在观察时刻 at 对合约全集应用谓词，返回匹配的期权链。
// 已退市合约一律排除；结果按名义到期日升序排列，同日按 Symbol 排序，
// 保证 "取第一个匹配" 之类的选择是确定性的。
func FilterChain(universe []*Contract, at time.Time, pred ChainPredicate) []*Contract {
	chain := make([]*Contract, 0, len(universe))
	for _, c := range universe {
		if !c.Active() {
			continue
		}
		if pred != nil && !pred(c) {
			continue
		}
		chain = append(chain, c)
	}

	sort.Slice(chain, func(i, j int) bool {
		if !chain[i].Expiry.Equal(chain[j].Expiry) {
			return chain[i].Expiry.Before(chain[j].Expiry)
		}
		return chain[i].Symbol < chain[j].Symbol
	})

	return chain
}

// ExpiringWithin 匹配名义到期日落在 [from, from+window] 内的合约
func ExpiringWithin(from time.Time, window time.Duration) ChainPredicate {
	until := from.Add(window)
	return func(c *Contract) bool {
		return !c.Expiry.Before(truncateToDay(from)) && !c.Expiry.After(until)
	}
}

// MinOpenInterest 匹配未平仓量大于等于 min 的合约
func MinOpenInterest(min int64) ChainPredicate {
	return func(c *Contract) bool {
		return c.OpenInterest >= min
	}
}

// ForUnderlying 匹配指定标的的合约
func ForUnderlying(underlying string) ChainPredicate {
	return func(c *Contract) bool {
		return c.Underlying == underlying
	}
}

// And 组合多个谓词，全部满足才匹配
func And(preds ...ChainPredicate) ChainPredicate {
	return func(c *Contract) bool {
		for _, p := range preds {
			if p != nil && !p(c) {
				return false
			}
		}
		return true
	}
}
