package version

// ObjectVersion is the UE4 package file version.
type ObjectVersion int32

// UE4 object versions referenced by the codec's layout branches.
const (
	Unversioned                        ObjectVersion = 0
	WorldLevelInfo                     ObjectVersion = 224
	UClassSerializeInterfacesAfterLink ObjectVersion = 241
	ArrayPropertyInnerTags             ObjectVersion = 282
	ChangedChunkIDToBeAnArray          ObjectVersion = 326
	EngineVersionObject                ObjectVersion = 336
	LoadForEditorGame                  ObjectVersion = 365
	FTextHistory                       ObjectVersion = 368
	AddStringAssetReferencesMap        ObjectVersion = 384
	TightlyPackedEnums                 ObjectVersion = 390
	AddCookedToUClass                  ObjectVersion = 399
	PropertyTagSetMapSupport           ObjectVersion = 426
	StructGUIDInPropertyTag            ObjectVersion = 441
	PackageSummaryHasCompatibleEngine  ObjectVersion = 444
	SerializeBlueprintEventGraphCalls  ObjectVersion = 453
	SerializeTextInPackages            ObjectVersion = 459
	CookedAssetsInEditorSupport        ObjectVersion = 485
	InnerArrayTagInfo                  ObjectVersion = 500
	PropertyGUIDInPropertyTag          ObjectVersion = 503
	NameHashesSerialized               ObjectVersion = 504
	PreloadDependenciesInCookedExports ObjectVersion = 507
	TemplateIndexInCookedExports       ObjectVersion = 508
	AddedSearchableNames               ObjectVersion = 510
	Export64BitSerialSizes             ObjectVersion = 511
	AddedSoftObjectPath                ObjectVersion = 514
	AddedPackageSummaryLocalizationID  ObjectVersion = 516
	AddedPackageOwner                  ObjectVersion = 518
	NonOuterPackageImport              ObjectVersion = 520
	LatestObjectVersion                ObjectVersion = 522
)

// ObjectVersionUE5 is the UE5 package file version. Zero means the package
// predates UE5 versioning.
type ObjectVersionUE5 int32

// UE5 object versions referenced by the codec's layout branches.
const (
	UE5Unversioned                        ObjectVersionUE5 = 0
	UE5Initial                            ObjectVersionUE5 = 1000
	UE5NamesReferencedFromExportData      ObjectVersionUE5 = 1001
	UE5PayloadTOC                         ObjectVersionUE5 = 1002
	UE5OptionalResources                  ObjectVersionUE5 = 1003
	UE5LargeWorldCoordinates              ObjectVersionUE5 = 1004
	UE5RemoveObjectExportPackageGUID      ObjectVersionUE5 = 1005
	UE5TrackObjectExportIsInherited       ObjectVersionUE5 = 1006
	UE5SoftObjectPathRemoveAssetPathNames ObjectVersionUE5 = 1007
	UE5AddSoftObjectPathList              ObjectVersionUE5 = 1008
	UE5DataResources                      ObjectVersionUE5 = 1009
	LatestObjectVersionUE5                ObjectVersionUE5 = 1009
)
