package table

import (
	"sync"

	"github.com/jwangsadinata/go-multimap/setmultimap"

	"github.com/flexsw/flexsw/core/swerr"
)

// Member is one action profile member.
type Member struct {
	Handle     MemberHandle `json:"handle"`
	ActionName string       `json:"actionName"`
	ActionData ActionData   `json:"actionData,omitempty"`
}

// Group is one selector group.
type Group struct {
	Handle  GroupHandle    `json:"handle"`
	Members []MemberHandle `json:"members"`
}

// Profile is an action profile: a shared pool of members, optionally grouped for selection.
type Profile struct {
	mu           sync.Mutex
	name         string
	withSelector bool
	actions      map[string]struct{}
	members      map[MemberHandle]*Member
	groups       map[GroupHandle]struct{}
	grpMembers   *setmultimap.MultiMap
	selector     GroupSelector
	nextMbr      MemberHandle
	nextGrp      GroupHandle
}

// NewProfile creates an action profile.
func NewProfile(name string, withSelector bool, actions []string) *Profile {
	p := &Profile{
		name:         name,
		withSelector: withSelector,
		actions:      map[string]struct{}{},
		members:      map[MemberHandle]*Member{},
		groups:       map[GroupHandle]struct{}{},
		grpMembers:   setmultimap.New(),
		selector:     RoundRobinSelector(),
	}
	for _, a := range actions {
		p.actions[a] = struct{}{}
	}
	return p
}

// Name returns the profile name.
func (p *Profile) Name() string { return p.name }

// WithSelector reports whether the profile supports selector groups.
func (p *Profile) WithSelector() bool { return p.withSelector }

// SetGroupSelector replaces the group selection policy.
func (p *Profile) SetGroupSelector(selector GroupSelector) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selector = selector
}

// AddMember adds a member.
func (p *Profile) AddMember(actionName string, data ActionData) (MemberHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.actions[actionName]; !ok {
		return 0, swerr.New(swerr.ActionNotFound, "profile %s has no action %s", p.name, actionName)
	}
	p.nextMbr++
	p.members[p.nextMbr] = &Member{Handle: p.nextMbr, ActionName: actionName, ActionData: append(ActionData(nil), data...)}
	return p.nextMbr, nil
}

// DeleteMember removes a member and its group membership.
func (p *Profile) DeleteMember(mbr MemberHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.members[mbr]; !ok {
		return swerr.New(swerr.MemberNotFound, "profile %s has no member %d", p.name, mbr)
	}
	delete(p.members, mbr)
	for _, key := range p.grpMembers.KeySet() {
		p.grpMembers.Remove(key, mbr)
	}
	return nil
}

// ModifyMember replaces the action of a member.
func (p *Profile) ModifyMember(mbr MemberHandle, actionName string, data ActionData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.actions[actionName]; !ok {
		return swerr.New(swerr.ActionNotFound, "profile %s has no action %s", p.name, actionName)
	}
	m, ok := p.members[mbr]
	if !ok {
		return swerr.New(swerr.MemberNotFound, "profile %s has no member %d", p.name, mbr)
	}
	m.ActionName = actionName
	m.ActionData = append(ActionData(nil), data...)
	return nil
}

// HasMember reports whether a member exists.
func (p *Profile) HasMember(mbr MemberHandle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.members[mbr]
	return ok
}

// CreateGroup creates an empty selector group.
func (p *Profile) CreateGroup() (GroupHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.withSelector {
		return 0, swerr.New(swerr.InvalidCommandError, "profile %s has no selector", p.name)
	}
	p.nextGrp++
	p.groups[p.nextGrp] = struct{}{}
	return p.nextGrp, nil
}

// DeleteGroup removes a group.
func (p *Profile) DeleteGroup(grp GroupHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.groups[grp]; !ok {
		return swerr.New(swerr.GroupNotFound, "profile %s has no group %d", p.name, grp)
	}
	delete(p.groups, grp)
	p.grpMembers.RemoveAll(grp)
	return nil
}

// HasGroup reports whether a group exists.
func (p *Profile) HasGroup(grp GroupHandle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.groups[grp]
	return ok
}

// AddMemberToGroup puts a member in a group.
func (p *Profile) AddMemberToGroup(mbr MemberHandle, grp GroupHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.members[mbr]; !ok {
		return swerr.New(swerr.MemberNotFound, "profile %s has no member %d", p.name, mbr)
	}
	if _, ok := p.groups[grp]; !ok {
		return swerr.New(swerr.GroupNotFound, "profile %s has no group %d", p.name, grp)
	}
	p.grpMembers.Put(grp, mbr)
	return nil
}

// RemoveMemberFromGroup takes a member out of a group.
func (p *Profile) RemoveMemberFromGroup(mbr MemberHandle, grp GroupHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.members[mbr]; !ok {
		return swerr.New(swerr.MemberNotFound, "profile %s has no member %d", p.name, mbr)
	}
	if _, ok := p.groups[grp]; !ok {
		return swerr.New(swerr.GroupNotFound, "profile %s has no group %d", p.name, grp)
	}
	p.grpMembers.Remove(grp, mbr)
	return nil
}

// GetMembers returns a copy of every member.
func (p *Profile) GetMembers() []Member {
	p.mu.Lock()
	defer p.mu.Unlock()
	members := make([]Member, 0, len(p.members))
	for _, m := range p.members {
		dup := *m
		dup.ActionData = append(ActionData(nil), m.ActionData...)
		members = append(members, dup)
	}
	return members
}

// GetMember returns a copy of one member.
func (p *Profile) GetMember(mbr MemberHandle) (Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.members[mbr]
	if !ok {
		return Member{}, swerr.New(swerr.MemberNotFound, "profile %s has no member %d", p.name, mbr)
	}
	dup := *m
	dup.ActionData = append(ActionData(nil), m.ActionData...)
	return dup, nil
}

func (p *Profile) groupMembers(grp GroupHandle) []MemberHandle {
	values, _ := p.grpMembers.Get(grp)
	members := make([]MemberHandle, 0, len(values))
	for _, v := range values {
		members = append(members, v.(MemberHandle))
	}
	return members
}

// GetGroups returns a copy of every group.
func (p *Profile) GetGroups() []Group {
	p.mu.Lock()
	defer p.mu.Unlock()
	groups := make([]Group, 0, len(p.groups))
	for grp := range p.groups {
		groups = append(groups, Group{Handle: grp, Members: p.groupMembers(grp)})
	}
	return groups
}

// GetGroup returns a copy of one group.
func (p *Profile) GetGroup(grp GroupHandle) (Group, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.groups[grp]; !ok {
		return Group{}, swerr.New(swerr.GroupNotFound, "profile %s has no group %d", p.name, grp)
	}
	return Group{Handle: grp, Members: p.groupMembers(grp)}, nil
}

// SelectFromGroup picks a member of a group using the selection policy.
func (p *Profile) SelectFromGroup(grp GroupHandle, hash uint64) (MemberHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.groups[grp]; !ok {
		return 0, swerr.New(swerr.GroupNotFound, "profile %s has no group %d", p.name, grp)
	}
	members := p.groupMembers(grp)
	if len(members) == 0 {
		return 0, swerr.New(swerr.MemberNotFound, "profile %s group %d is empty", p.name, grp)
	}
	return p.selector.Select(grp, members, hash), nil
}
