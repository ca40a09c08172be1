package tablemgmt

import (
	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/sw"
)

// ActProfMgmt manages action profiles.
type ActProfMgmt struct {
	Sw *sw.Switch
}

// AddMember adds a member to an action profile.
func (mg ActProfMgmt) AddMember(args AddMemberArg, reply *MemberReply) error {
	mbr, e := mg.Sw.MtActProfAddMember(args.Cxt, args.Profile, args.Action, table.ActionData(args.ActionData))
	if e != nil {
		return e
	}
	reply.Member = uint32(mbr)
	return nil
}

// DeleteMember removes a member.
func (mg ActProfMgmt) DeleteMember(args MemberArg, reply *struct{}) error {
	return mg.Sw.MtActProfDeleteMember(args.Cxt, args.Profile, table.MemberHandle(args.Member))
}

// ModifyMember replaces the action of a member.
func (mg ActProfMgmt) ModifyMember(args ModifyMemberArg, reply *struct{}) error {
	return mg.Sw.MtActProfModifyMember(args.Cxt, args.Profile, table.MemberHandle(args.Member), args.Action, table.ActionData(args.ActionData))
}

// CreateGroup creates an empty selector group.
func (mg ActProfMgmt) CreateGroup(args ProfArg, reply *GroupReply) error {
	grp, e := mg.Sw.MtActProfCreateGroup(args.Cxt, args.Profile)
	if e != nil {
		return e
	}
	reply.Group = uint32(grp)
	return nil
}

// DeleteGroup removes a group.
func (mg ActProfMgmt) DeleteGroup(args GroupArg, reply *struct{}) error {
	return mg.Sw.MtActProfDeleteGroup(args.Cxt, args.Profile, table.GroupHandle(args.Group))
}

// AddMemberToGroup puts a member in a group.
func (mg ActProfMgmt) AddMemberToGroup(args MemberGroupArg, reply *struct{}) error {
	return mg.Sw.MtActProfAddMemberToGroup(args.Cxt, args.Profile, table.MemberHandle(args.Member), table.GroupHandle(args.Group))
}

// RemoveMemberFromGroup takes a member out of a group.
func (mg ActProfMgmt) RemoveMemberFromGroup(args MemberGroupArg, reply *struct{}) error {
	return mg.Sw.MtActProfRemoveMemberFromGroup(args.Cxt, args.Profile, table.MemberHandle(args.Member), table.GroupHandle(args.Group))
}

// GetMembers returns every member of a profile.
func (mg ActProfMgmt) GetMembers(args ProfArg, reply *MembersReply) error {
	members, e := mg.Sw.MtActProfGetMembers(args.Cxt, args.Profile)
	if e != nil {
		return e
	}
	reply.Members = members
	return nil
}

// GetMember returns one member of a profile.
func (mg ActProfMgmt) GetMember(args MemberArg, reply *OneMemberReply) error {
	member, e := mg.Sw.MtActProfGetMember(args.Cxt, args.Profile, table.MemberHandle(args.Member))
	if e != nil {
		return e
	}
	reply.Member = member
	return nil
}

// GetGroups returns every group of a profile.
func (mg ActProfMgmt) GetGroups(args ProfArg, reply *GroupsReply) error {
	groups, e := mg.Sw.MtActProfGetGroups(args.Cxt, args.Profile)
	if e != nil {
		return e
	}
	reply.Groups = groups
	return nil
}

// GetGroup returns one group of a profile.
func (mg ActProfMgmt) GetGroup(args GroupArg, reply *OneGroupReply) error {
	group, e := mg.Sw.MtActProfGetGroup(args.Cxt, args.Profile, table.GroupHandle(args.Group))
	if e != nil {
		return e
	}
	reply.Group = group
	return nil
}
