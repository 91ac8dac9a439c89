// Package domain defines the persistence models for communities, their
// custom commands, and role links. These types are mapped with GORM and form
// the core data layer of the bot.
package domain

import (
	"time"
)

// DefaultPrefix is the column default for Community.CommandPrefix. The
// process-wide default (COMMAND_PREFIX) is written explicitly on insert.
const DefaultPrefix = "!"

// Community is one chat community (a Telegram group or supergroup) the bot
// serves. The identifier is assigned by the messaging platform and is never
// generated locally.
//
// Fields:
//   - ID: platform chat identifier (bigint primary key, no auto-increment).
//   - Name: display name, refreshed on rename events.
//   - CommandPrefix: per-community command prefix (varchar(5)).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Community struct {
	ID            int64     `json:"id"             gorm:"primaryKey;autoIncrement:false"`
	Name          string    `json:"name"           gorm:"type:text;not null;default:''"`
	CommandPrefix string    `json:"command_prefix" gorm:"type:varchar(5);not null;default:'!'"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for Community.
func (Community) TableName() string { return "community" }

// CustomCommand is a store-defined command: a trigger word that makes the bot
// reply with a text response and/or a stored file.
//
// Fields:
//   - CommunityID + Trigger: unique together (ux_custom_command_trigger).
//   - Response: reply text, may be empty when a file is attached.
//   - File: path of the stored attachment relative to MEDIA_ROOT, or "".
//   - OriginalFileName: the attachment's original name for display, or "".
//   - Community: FK association, cascade-deleted with the community.
type CustomCommand struct {
	ID               uint      `json:"id"                 gorm:"primaryKey"`
	CommunityID      int64     `json:"community_id"       gorm:"not null;uniqueIndex:ux_custom_command_trigger,priority:1"`
	Trigger          string    `json:"trigger"            gorm:"type:text;not null;uniqueIndex:ux_custom_command_trigger,priority:2"`
	Response         string    `json:"response"           gorm:"type:text;not null;default:''"`
	File             string    `json:"file,omitempty"     gorm:"type:text;not null;default:''"`
	OriginalFileName string    `json:"original_file_name,omitempty" gorm:"type:text;not null;default:''"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Community Community `json:"-" gorm:"foreignKey:CommunityID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CustomCommand.
func (CustomCommand) TableName() string { return "custom_command" }

// HasFile reports whether the command replies with a stored attachment.
func (c CustomCommand) HasFile() bool { return c.File != "" }

// RoleLink pairs a presence channel with a role granted while a member is
// present in it. GuildID is denormalized from the channel to avoid a second
// platform lookup and must always agree with the channel's community.
type RoleLink struct {
	ID             uint  `json:"id"               gorm:"primaryKey"`
	GuildID        int64 `json:"guild_id"         gorm:"not null;index:idx_role_link_guild"`
	VoiceChannelID int64 `json:"voice_channel_id" gorm:"not null;uniqueIndex:ux_role_link_channel_role,priority:1"`
	RoleID         int64 `json:"role_id"          gorm:"not null;uniqueIndex:ux_role_link_channel_role,priority:2"`
}

// TableName returns the database table name for RoleLink.
func (RoleLink) TableName() string { return "role_link" }

// ParsedCommand carries the parsed data of a custom command about to be
// inserted or updated.
type ParsedCommand struct {
	Trigger  string
	Response string
	// PathRelative is the stored file path relative to the media root.
	PathRelative string
	// FileName is the attachment's original name.
	FileName string
}
