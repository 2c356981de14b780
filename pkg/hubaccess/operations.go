package hubaccess

// Operation names the logical operation that produced an error. Some API
// codes only have a precise meaning once the operation is known.
type Operation string

// Operations performed through the access facades.
const (
	OperationUnknown            Operation = ""
	OperationGetIModel          Operation = "GetIModel"
	OperationAcquireBriefcase   Operation = "AcquireBriefcase"
	OperationReleaseBriefcase   Operation = "ReleaseBriefcase"
	OperationQueryBriefcases    Operation = "QueryBriefcases"
	OperationGetChangeset       Operation = "GetChangeset"
	OperationQueryChangesets    Operation = "QueryChangesets"
	OperationDownloadChangesets Operation = "DownloadChangesets"
	OperationCreateChangeset    Operation = "CreateChangeset"
	OperationGetNamedVersion    Operation = "GetNamedVersion"
	OperationCreateNamedVersion Operation = "CreateNamedVersion"
	OperationGetCheckpoint      Operation = "GetCheckpoint"
	OperationDownloadCheckpoint Operation = "DownloadCheckpoint"
	OperationQueryLocks         Operation = "QueryLocks"
	OperationUpdateLock         Operation = "UpdateLock"
	OperationReleaseAllLocks    Operation = "ReleaseAllLocks"
)
