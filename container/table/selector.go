package table

import "sync/atomic"

// GroupSelector picks a member from a selector group.
// The control plane may replace the policy per action profile.
type GroupSelector interface {
	Select(grp GroupHandle, members []MemberHandle, hash uint64) MemberHandle
}

// SelectorFunc adapts a function to GroupSelector.
type SelectorFunc func(grp GroupHandle, members []MemberHandle, hash uint64) MemberHandle

// Select implements GroupSelector.
func (f SelectorFunc) Select(grp GroupHandle, members []MemberHandle, hash uint64) MemberHandle {
	return f(grp, members, hash)
}

// RoundRobinSelector returns the default selection policy, rotating through group members.
func RoundRobinSelector() GroupSelector {
	var counter uint64
	return SelectorFunc(func(grp GroupHandle, members []MemberHandle, hash uint64) MemberHandle {
		n := atomic.AddUint64(&counter, 1)
		return members[int((n-1)%uint64(len(members)))]
	})
}

// HashSelector selects by packet hash modulo group size.
func HashSelector() GroupSelector {
	return SelectorFunc(func(grp GroupHandle, members []MemberHandle, hash uint64) MemberHandle {
		return members[int(hash%uint64(len(members)))]
	})
}
