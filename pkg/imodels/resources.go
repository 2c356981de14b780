package imodels

import "time"

// IModelState represents the initialization state of an iModel.
type IModelState string

const (
	IModelStateInitialized    IModelState = "initialized"
	IModelStateNotInitialized IModelState = "notInitialized"
)

// IModel represents a versioned BIM/CAD container.
type IModel struct {
	ID                string      `json:"id"                          yaml:"id"`
	DisplayName       string      `json:"displayName"                 yaml:"displayName"`
	Name              string      `json:"name,omitempty"              yaml:"name,omitempty"`
	Description       string      `json:"description,omitempty"       yaml:"description,omitempty"`
	State             IModelState `json:"state,omitempty"             yaml:"state,omitempty"`
	CreatedDateTime   time.Time   `json:"createdDateTime,omitempty"   yaml:"createdDateTime,omitempty"`
	ITwinID           string      `json:"iTwinId,omitempty"           yaml:"iTwinId,omitempty"`
	ContainersEnabled int         `json:"containersEnabled,omitempty" yaml:"containersEnabled,omitempty"`
}

// IModelCreateRequest represents a request to create an empty iModel.
type IModelCreateRequest struct {
	// ITwinID is the iTwin that will own the iModel.
	ITwinID string `json:"iTwinId" yaml:"iTwinId"`
	// Name must be unique within the iTwin.
	Name string `json:"name" yaml:"name"`
	// Description is optional.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// IModelUpdateRequest represents a request to update an iModel.
type IModelUpdateRequest struct {
	Name        *string `json:"name,omitempty"        yaml:"name,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Application identifies the client application that produced an entity.
type Application struct {
	ID   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Briefcase is a numbered, server-registered working copy of an iModel.
type Briefcase struct {
	ID               string       `json:"id"                         yaml:"id"`
	BriefcaseID      int          `json:"briefcaseId"                yaml:"briefcaseId"`
	DisplayName      string       `json:"displayName"                yaml:"displayName"`
	OwnerID          string       `json:"ownerId,omitempty"          yaml:"ownerId,omitempty"`
	AcquiredDateTime time.Time    `json:"acquiredDateTime,omitempty" yaml:"acquiredDateTime,omitempty"`
	FileSize         int64        `json:"fileSize,omitempty"         yaml:"fileSize,omitempty"`
	DeviceName       string       `json:"deviceName,omitempty"       yaml:"deviceName,omitempty"`
	Application      *Application `json:"application,omitempty"      yaml:"application,omitempty"`
}

// BriefcaseAcquireRequest represents a request to acquire a new briefcase.
type BriefcaseAcquireRequest struct {
	DeviceName string `json:"deviceName,omitempty" yaml:"deviceName,omitempty"`
}

// ContainingChanges describes the kind of changes within a changeset.
type ContainingChanges int

const (
	ContainingChangesRegular ContainingChanges = 0
	ContainingChangesSchema  ContainingChanges = 1
)

// String returns the name of the containing changes kind.
func (c ContainingChanges) String() string {
	if c == ContainingChangesSchema {
		return "Schema"
	}

	return "Regular"
}

// ChangesetState describes whether the changeset file has been uploaded.
type ChangesetState string

const (
	ChangesetStateWaitingForFile ChangesetState = "waitingForFile"
	ChangesetStateFileUploaded   ChangesetState = "fileUploaded"
)

// ChangesetLinks represents the links of a changeset.
type ChangesetLinks struct {
	Download                     *Link `json:"download,omitempty"                     yaml:"download,omitempty"`
	Upload                       *Link `json:"upload,omitempty"                       yaml:"upload,omitempty"`
	Complete                     *Link `json:"complete,omitempty"                     yaml:"complete,omitempty"`
	NamedVersion                 *Link `json:"namedVersion,omitempty"                 yaml:"namedVersion,omitempty"`
	CurrentOrPrecedingCheckpoint *Link `json:"currentOrPrecedingCheckpoint,omitempty" yaml:"currentOrPrecedingCheckpoint,omitempty"`
}

// Changeset is an immutable, ordered delta applied to an iModel.
// Index 0 is reserved for the baseline and never has a changeset entity.
type Changeset struct {
	ID                string            `json:"id"                     yaml:"id"`
	DisplayName       string            `json:"displayName"            yaml:"displayName"`
	Index             int               `json:"index"                  yaml:"index"`
	ParentID          string            `json:"parentId"               yaml:"parentId"`
	BriefcaseID       int               `json:"briefcaseId"            yaml:"briefcaseId"`
	Description       string            `json:"description,omitempty"  yaml:"description,omitempty"`
	ContainingChanges ContainingChanges `json:"containingChanges"      yaml:"containingChanges"`
	PushDateTime      time.Time         `json:"pushDateTime,omitempty" yaml:"pushDateTime,omitempty"`
	CreatorID         string            `json:"creatorId,omitempty"    yaml:"creatorId,omitempty"`
	FileSize          int64             `json:"fileSize"               yaml:"fileSize"`
	State             ChangesetState    `json:"state,omitempty"        yaml:"state,omitempty"`
	Application       *Application      `json:"application,omitempty"  yaml:"application,omitempty"`
	Links             ChangesetLinks    `json:"_links"                 yaml:"_links"`
}

// ChangesetCreateRequest describes a changeset to push. FilePath is uploaded
// through the configured content transfer before the changeset is completed.
type ChangesetCreateRequest struct {
	ID                string            `json:"id"                    yaml:"id"`
	Description       string            `json:"description,omitempty" yaml:"description,omitempty"`
	ParentID          string            `json:"parentId,omitempty"    yaml:"parentId,omitempty"`
	BriefcaseID       int               `json:"briefcaseId"           yaml:"briefcaseId"`
	ContainingChanges ContainingChanges `json:"containingChanges"     yaml:"containingChanges"`
	FileSize          int64             `json:"fileSize"              yaml:"fileSize"`
	FilePath          string            `json:"-"                     yaml:"-"`
}

// ChangesetCompleteRequest marks an uploaded changeset as complete.
type ChangesetCompleteRequest struct {
	State       ChangesetState `json:"state"       yaml:"state"`
	BriefcaseID int            `json:"briefcaseId" yaml:"briefcaseId"`
}

// DownloadedChangeset is a changeset together with the local path of its file.
type DownloadedChangeset struct {
	Changeset

	FilePath string `json:"filePath" yaml:"filePath"`
}

// NamedVersionState controls the visibility of a named version.
type NamedVersionState string

const (
	NamedVersionStateVisible NamedVersionState = "visible"
	NamedVersionStateHidden  NamedVersionState = "hidden"
)

// NamedVersion is a human-named pointer to a specific changeset.
type NamedVersion struct {
	ID              string            `json:"id"                        yaml:"id"`
	DisplayName     string            `json:"displayName"               yaml:"displayName"`
	Description     string            `json:"description,omitempty"     yaml:"description,omitempty"`
	ChangesetID     string            `json:"changesetId"               yaml:"changesetId"`
	ChangesetIndex  int               `json:"changesetIndex"            yaml:"changesetIndex"`
	State           NamedVersionState `json:"state,omitempty"           yaml:"state,omitempty"`
	CreatedDateTime time.Time         `json:"createdDateTime,omitempty" yaml:"createdDateTime,omitempty"`
}

// NamedVersionCreateRequest represents a request to create a named version.
type NamedVersionCreateRequest struct {
	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// ChangesetID is empty for a named version on the baseline.
	ChangesetID string `json:"changesetId,omitempty" yaml:"changesetId,omitempty"`
}

// NamedVersionUpdateRequest represents a request to update a named version.
type NamedVersionUpdateRequest struct {
	Name        *string            `json:"name,omitempty"        yaml:"name,omitempty"`
	Description *string            `json:"description,omitempty" yaml:"description,omitempty"`
	State       *NamedVersionState `json:"state,omitempty"       yaml:"state,omitempty"`
}

// CheckpointState is the generation state of a checkpoint. It may move from
// scheduled to successful or failed between two reads.
type CheckpointState string

const (
	CheckpointStateSuccessful   CheckpointState = "successful"
	CheckpointStateScheduled    CheckpointState = "scheduled"
	CheckpointStateFailed       CheckpointState = "failed"
	CheckpointStateNotGenerated CheckpointState = "notGenerated"
)

// StorageInfo describes the cloud storage that backs a v2 checkpoint container.
type StorageInfo struct {
	BaseURL     string            `json:"baseUrl"               yaml:"baseUrl"`
	Type        string            `json:"type"                  yaml:"type"`
	Credentials map[string]string `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

// DirectoryAccessInfo grants access to a v2 checkpoint container.
type DirectoryAccessInfo struct {
	BaseDirectory string      `json:"baseDirectory" yaml:"baseDirectory"`
	Storage       StorageInfo `json:"storage"       yaml:"storage"`
}

// CheckpointLinks represents the links of a checkpoint.
type CheckpointLinks struct {
	Download *Link `json:"download,omitempty" yaml:"download,omitempty"`
}

// Checkpoint is a precomputed full-state snapshot of an iModel at a changeset.
type Checkpoint struct {
	ChangesetIndex      int                  `json:"changesetIndex"                yaml:"changesetIndex"`
	ChangesetID         string               `json:"changesetId"                   yaml:"changesetId"`
	State               CheckpointState      `json:"state"                         yaml:"state"`
	DirectoryAccessInfo *DirectoryAccessInfo `json:"directoryAccessInfo,omitempty" yaml:"directoryAccessInfo,omitempty"`
	Links               CheckpointLinks      `json:"_links"                        yaml:"_links"`
}

// CheckpointPredicate decides whether a checkpoint is usable.
type CheckpointPredicate func(checkpoint *Checkpoint) bool

// HasV1Checkpoint accepts checkpoints that can be downloaded as a single file.
func HasV1Checkpoint(checkpoint *Checkpoint) bool {
	return checkpoint != nil && checkpoint.Links.Download != nil && checkpoint.Links.Download.Href != ""
}

// HasV2Checkpoint accepts checkpoints that are backed by a cloud container.
func HasV2Checkpoint(checkpoint *Checkpoint) bool {
	return checkpoint != nil && checkpoint.DirectoryAccessInfo != nil
}

// LockLevel is the level of a lock held on an object.
type LockLevel string

const (
	LockLevelNone      LockLevel = "none"
	LockLevelShared    LockLevel = "shared"
	LockLevelExclusive LockLevel = "exclusive"
)

// LockedObjects groups object ids held at the same lock level.
type LockedObjects struct {
	LockLevel LockLevel `json:"lockLevel" yaml:"lockLevel"`
	ObjectIDs []string  `json:"objectIds" yaml:"objectIds"`
}

// Lock is the lock record of a single briefcase. An object id appears in at
// most one LockedObjects group.
type Lock struct {
	BriefcaseID   int             `json:"briefcaseId"   yaml:"briefcaseId"`
	LockedObjects []LockedObjects `json:"lockedObjects" yaml:"lockedObjects"`
}

// LockUpdateRequest changes the lock levels held by a briefcase.
type LockUpdateRequest struct {
	BriefcaseID   int             `json:"briefcaseId"           yaml:"briefcaseId"`
	ChangesetID   string          `json:"changesetId,omitempty" yaml:"changesetId,omitempty"`
	LockedObjects []LockedObjects `json:"lockedObjects"         yaml:"lockedObjects"`
}
