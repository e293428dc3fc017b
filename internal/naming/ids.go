package naming

// Parameters, conditions and pseudo parameters every compiled document
// refers to.
const (
	EnvParam                 = "env"
	AppSyncAPIIDParam        = "AppSyncApiId"
	DeploymentBucketParam    = "S3DeploymentBucket"
	DeploymentRootKeyParam   = "S3DeploymentRootKey"
	HasEnvironmentCondition  = "HasEnvironmentParameter"
	StackNamePseudoParam     = "AWS::StackName"
	RegionPseudoParam        = "AWS::Region"
	GraphQLAPILogicalID      = "GraphQLAPI"
	NoEnvValue               = "NONE"
	EnvPlaceholder           = "${env}"
	StackHashPlaceholder     = "${hash}"
	ResourceNameSeparator    = "-"
	StackNameHashTokenOffset = 3
)

// Logical IDs of the shared resources a compilation may define.
const (
	IAMRoleID       = "PredictionsIAMRole"
	LambdaID        = "PredictionsLambda"
	LambdaIAMRoleID = "PredictionsLambdaIAMRole"
)

// Physical name prefixes and settings for the shared resources.
const (
	IAMRoleName       = "predictionsIAMRole"
	LambdaName        = "predictionsLambda"
	LambdaIAMRoleName = "predictionsLambdaIAMRole"
	LambdaHandler     = "predictionsLambda.handler"
	LambdaRuntime     = "nodejs12.x"
)

// FunctionID is the logical ID of the pipeline function for action.
func FunctionID(action string) string {
	return action + "Function"
}

// ResolverID is the logical ID of the resolver for typeName.fieldName.
func ResolverID(typeName, fieldName string) string {
	return typeName + Capitalize(fieldName) + "Resolver"
}

// Capitalize upper-cases the first ASCII letter of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
