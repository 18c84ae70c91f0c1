package osc

import (
	"strings"

	"SNCatalog/internal/model"
)

// Group 合并键相同的一组声明。First 提供非来源字段，Aliases 为逗号拼接的来源别名
type Group[T any] struct {
	First   T
	Members []T
	Aliases string
}

// Merge 按合并键分组（组顺序与组内顺序均为首次出现顺序），
// 并按成员顺序为每个成员取一次别名。同组重复来源不去重。
func Merge[T any, K comparable](facts []T, reg *AliasRegistry, keyOf func(T) K, sourceOf func(T) *model.Source) []Group[T] {
	order := make([]K, 0, len(facts))
	grouped := make(map[K][]T, len(facts))
	for _, f := range facts {
		k := keyOf(f)
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], f)
	}

	groups := make([]Group[T], 0, len(order))
	for _, k := range order {
		members := grouped[k]
		aliases := make([]string, 0, len(members))
		for _, m := range members {
			aliases = append(aliases, reg.Alias(sourceOf(m)))
		}
		groups = append(groups, Group[T]{
			First:   members[0],
			Members: members,
			Aliases: strings.Join(aliases, ","),
		})
	}
	return groups
}

// SplitAliases 导入方向：将 "2,3" 拆回单个别名
func SplitAliases(source string) []string {
	return strings.Split(source, ",")
}
