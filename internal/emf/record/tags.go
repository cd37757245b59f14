package record

// EMF record types (MS-EMF 2.1.1). Values match the GDI record type numbers.
const (
	EmfHeader                  Tag = 1
	EmfPolyBezier              Tag = 2
	EmfPolygon                 Tag = 3
	EmfPolyline                Tag = 4
	EmfPolyBezierTo            Tag = 5
	EmfPolyLineTo              Tag = 6
	EmfPolyPolyline            Tag = 7
	EmfPolyPolygon             Tag = 8
	EmfSetWindowExtEx          Tag = 9
	EmfSetWindowOrgEx          Tag = 10
	EmfSetViewportExtEx        Tag = 11
	EmfSetViewportOrgEx        Tag = 12
	EmfSetBrushOrgEx           Tag = 13
	EmfEOF                     Tag = 14
	EmfSetPixelV               Tag = 15
	EmfSetMapperFlags          Tag = 16
	EmfSetMapMode              Tag = 17
	EmfSetBkMode               Tag = 18
	EmfSetPolyFillMode         Tag = 19
	EmfSetROP2                 Tag = 20
	EmfSetStretchBltMode       Tag = 21
	EmfSetTextAlign            Tag = 22
	EmfSetColorAdjustment      Tag = 23
	EmfSetTextColor            Tag = 24
	EmfSetBkColor              Tag = 25
	EmfOffsetClipRgn           Tag = 26
	EmfMoveToEx                Tag = 27
	EmfSetMetaRgn              Tag = 28
	EmfExcludeClipRect         Tag = 29
	EmfIntersectClipRect       Tag = 30
	EmfScaleViewportExtEx      Tag = 31
	EmfScaleWindowExtEx        Tag = 32
	EmfSaveDC                  Tag = 33
	EmfRestoreDC               Tag = 34
	EmfSetWorldTransform       Tag = 35
	EmfModifyWorldTransform    Tag = 36
	EmfSelectObject            Tag = 37
	EmfCreatePen               Tag = 38
	EmfCreateBrushIndirect     Tag = 39
	EmfDeleteObject            Tag = 40
	EmfAngleArc                Tag = 41
	EmfEllipse                 Tag = 42
	EmfRectangle               Tag = 43
	EmfRoundRect               Tag = 44
	EmfRoundArc                Tag = 45
	EmfChord                   Tag = 46
	EmfPie                     Tag = 47
	EmfSelectPalette           Tag = 48
	EmfCreatePalette           Tag = 49
	EmfSetPaletteEntries       Tag = 50
	EmfResizePalette           Tag = 51
	EmfRealizePalette          Tag = 52
	EmfExtFloodFill            Tag = 53
	EmfLineTo                  Tag = 54
	EmfArcTo                   Tag = 55
	EmfPolyDraw                Tag = 56
	EmfSetArcDirection         Tag = 57
	EmfSetMiterLimit           Tag = 58
	EmfBeginPath               Tag = 59
	EmfEndPath                 Tag = 60
	EmfCloseFigure             Tag = 61
	EmfFillPath                Tag = 62
	EmfStrokeAndFillPath       Tag = 63
	EmfStrokePath              Tag = 64
	EmfFlattenPath             Tag = 65
	EmfWidenPath               Tag = 66
	EmfSelectClipPath          Tag = 67
	EmfAbortPath               Tag = 68
	EmfReserved069             Tag = 69
	EmfGdiComment              Tag = 70
	EmfFillRgn                 Tag = 71
	EmfFrameRgn                Tag = 72
	EmfInvertRgn               Tag = 73
	EmfPaintRgn                Tag = 74
	EmfExtSelectClipRgn        Tag = 75
	EmfBitBlt                  Tag = 76
	EmfStretchBlt              Tag = 77
	EmfMaskBlt                 Tag = 78
	EmfPlgBlt                  Tag = 79
	EmfSetDIBitsToDevice       Tag = 80
	EmfStretchDIBits           Tag = 81
	EmfExtCreateFontIndirect   Tag = 82
	EmfExtTextOutA             Tag = 83
	EmfExtTextOutW             Tag = 84
	EmfPolyBezier16            Tag = 85
	EmfPolygon16               Tag = 86
	EmfPolyline16              Tag = 87
	EmfPolyBezierTo16          Tag = 88
	EmfPolylineTo16            Tag = 89
	EmfPolyPolyline16          Tag = 90
	EmfPolyPolygon16           Tag = 91
	EmfPolyDraw16              Tag = 92
	EmfCreateMonoBrush         Tag = 93
	EmfCreateDibPatternBrushPt Tag = 94
	EmfExtCreatePen            Tag = 95
	EmfPolyTextOutA            Tag = 96
	EmfPolyTextOutW            Tag = 97
	EmfSetIcmMode              Tag = 98
	EmfCreateColorSpace        Tag = 99
	EmfSetColorSpace           Tag = 100
	EmfDeleteColorSpace        Tag = 101
	EmfGlsRecord               Tag = 102
	EmfGlsBoundedRecord        Tag = 103
	EmfPixelFormat             Tag = 104
	EmfDrawEscape              Tag = 105
	EmfExtEscape               Tag = 106
	EmfStartDoc                Tag = 107
	EmfSmallTextOut            Tag = 108
	EmfForceUfiMapping         Tag = 109
	EmfNamedEscape             Tag = 110
	EmfColorCorrectPalette     Tag = 111
	EmfSetIcmProfileA          Tag = 112
	EmfSetIcmProfileW          Tag = 113
	EmfAlphaBlend              Tag = 114
	EmfSetLayout               Tag = 115
	EmfTransparentBlt          Tag = 116
	EmfReserved117             Tag = 117
	EmfGradientFill            Tag = 118
	EmfSetLinkedUfis           Tag = 119
	EmfSetTextJustification    Tag = 120
	EmfColorMatchToTargetW     Tag = 121
	EmfCreateColorSpaceW       Tag = 122
)

// EMF+ record types (MS-EMFPLUS 2.1.1.1).
const (
	EmfPlusRecordBase              Tag = 0x4000
	EmfPlusHeader                  Tag = 0x4001
	EmfPlusEndOfFile               Tag = 0x4002
	EmfPlusComment                 Tag = 0x4003
	EmfPlusGetDC                   Tag = 0x4004
	EmfPlusMultiFormatStart        Tag = 0x4005
	EmfPlusMultiFormatSection      Tag = 0x4006
	EmfPlusMultiFormatEnd          Tag = 0x4007
	EmfPlusObject                  Tag = 0x4008
	EmfPlusClear                   Tag = 0x4009
	EmfPlusFillRects               Tag = 0x400A
	EmfPlusDrawRects               Tag = 0x400B
	EmfPlusFillPolygon             Tag = 0x400C
	EmfPlusDrawLines               Tag = 0x400D
	EmfPlusFillEllipse             Tag = 0x400E
	EmfPlusDrawEllipse             Tag = 0x400F
	EmfPlusFillPie                 Tag = 0x4010
	EmfPlusDrawPie                 Tag = 0x4011
	EmfPlusDrawArc                 Tag = 0x4012
	EmfPlusFillRegion              Tag = 0x4013
	EmfPlusFillPath                Tag = 0x4014
	EmfPlusDrawPath                Tag = 0x4015
	EmfPlusFillClosedCurve         Tag = 0x4016
	EmfPlusDrawClosedCurve         Tag = 0x4017
	EmfPlusDrawCurve               Tag = 0x4018
	EmfPlusDrawBeziers             Tag = 0x4019
	EmfPlusDrawImage               Tag = 0x401A
	EmfPlusDrawImagePoints         Tag = 0x401B
	EmfPlusDrawString              Tag = 0x401C
	EmfPlusSetRenderingOrigin      Tag = 0x401D
	EmfPlusSetAntiAliasMode        Tag = 0x401E
	EmfPlusSetTextRenderingHint    Tag = 0x401F
	EmfPlusSetTextContrast         Tag = 0x4020
	EmfPlusSetInterpolationMode    Tag = 0x4021
	EmfPlusSetPixelOffsetMode      Tag = 0x4022
	EmfPlusSetCompositingMode      Tag = 0x4023
	EmfPlusSetCompositingQuality   Tag = 0x4024
	EmfPlusSave                    Tag = 0x4025
	EmfPlusRestore                 Tag = 0x4026
	EmfPlusBeginContainer          Tag = 0x4027
	EmfPlusBeginContainerNoParams  Tag = 0x4028
	EmfPlusEndContainer            Tag = 0x4029
	EmfPlusSetWorldTransform       Tag = 0x402A
	EmfPlusResetWorldTransform     Tag = 0x402B
	EmfPlusMultiplyWorldTransform  Tag = 0x402C
	EmfPlusTranslateWorldTransform Tag = 0x402D
	EmfPlusScaleWorldTransform     Tag = 0x402E
	EmfPlusRotateWorldTransform    Tag = 0x402F
	EmfPlusSetPageTransform        Tag = 0x4030
	EmfPlusResetClip               Tag = 0x4031
	EmfPlusSetClipRect             Tag = 0x4032
	EmfPlusSetClipPath             Tag = 0x4033
	EmfPlusSetClipRegion           Tag = 0x4034
	EmfPlusOffsetClip              Tag = 0x4035
	EmfPlusDrawDriverString        Tag = 0x4036
	EmfPlusStrokeFillPath          Tag = 0x4037
	EmfPlusSerializableObject      Tag = 0x4038
	EmfPlusSetTSGraphics           Tag = 0x4039
	EmfPlusSetTSClip               Tag = 0x403A
)

// DrawString is the EMF+ text record. Exposed under the short name used by
// GDI+ enumeration callbacks.
const DrawString = EmfPlusDrawString

var emfNames = [...]string{
	"", "EmfHeader", "EmfPolyBezier", "EmfPolygon", "EmfPolyline", "EmfPolyBezierTo",
	"EmfPolyLineTo", "EmfPolyPolyline", "EmfPolyPolygon", "EmfSetWindowExtEx", "EmfSetWindowOrgEx",
	"EmfSetViewportExtEx", "EmfSetViewportOrgEx", "EmfSetBrushOrgEx", "EmfEof", "EmfSetPixelV",
	"EmfSetMapperFlags", "EmfSetMapMode", "EmfSetBkMode", "EmfSetPolyFillMode", "EmfSetROP2",
	"EmfSetStretchBltMode", "EmfSetTextAlign", "EmfSetColorAdjustment", "EmfSetTextColor", "EmfSetBkColor",
	"EmfOffsetClipRgn", "EmfMoveToEx", "EmfSetMetaRgn", "EmfExcludeClipRect", "EmfIntersectClipRect",
	"EmfScaleViewportExtEx", "EmfScaleWindowExtEx", "EmfSaveDC", "EmfRestoreDC", "EmfSetWorldTransform",
	"EmfModifyWorldTransform", "EmfSelectObject", "EmfCreatePen", "EmfCreateBrushIndirect", "EmfDeleteObject",
	"EmfAngleArc", "EmfEllipse", "EmfRectangle", "EmfRoundRect", "EmfRoundArc",
	"EmfChord", "EmfPie", "EmfSelectPalette", "EmfCreatePalette", "EmfSetPaletteEntries",
	"EmfResizePalette", "EmfRealizePalette", "EmfExtFloodFill", "EmfLineTo", "EmfArcTo",
	"EmfPolyDraw", "EmfSetArcDirection", "EmfSetMiterLimit", "EmfBeginPath", "EmfEndPath",
	"EmfCloseFigure", "EmfFillPath", "EmfStrokeAndFillPath", "EmfStrokePath", "EmfFlattenPath",
	"EmfWidenPath", "EmfSelectClipPath", "EmfAbortPath", "EmfReserved069", "EmfGdiComment",
	"EmfFillRgn", "EmfFrameRgn", "EmfInvertRgn", "EmfPaintRgn", "EmfExtSelectClipRgn",
	"EmfBitBlt", "EmfStretchBlt", "EmfMaskBlt", "EmfPlgBlt", "EmfSetDIBitsToDevice",
	"EmfStretchDIBits", "EmfExtCreateFontIndirect", "EmfExtTextOutA", "EmfExtTextOutW", "EmfPolyBezier16",
	"EmfPolygon16", "EmfPolyline16", "EmfPolyBezierTo16", "EmfPolylineTo16", "EmfPolyPolyline16",
	"EmfPolyPolygon16", "EmfPolyDraw16", "EmfCreateMonoBrush", "EmfCreateDibPatternBrushPt", "EmfExtCreatePen",
	"EmfPolyTextOutA", "EmfPolyTextOutW", "EmfSetIcmMode", "EmfCreateColorSpace", "EmfSetColorSpace",
	"EmfDeleteColorSpace", "EmfGlsRecord", "EmfGlsBoundedRecord", "EmfPixelFormat", "EmfDrawEscape",
	"EmfExtEscape", "EmfStartDoc", "EmfSmallTextOut", "EmfForceUfiMapping", "EmfNamedEscape",
	"EmfColorCorrectPalette", "EmfSetIcmProfileA", "EmfSetIcmProfileW", "EmfAlphaBlend", "EmfSetLayout",
	"EmfTransparentBlt", "EmfReserved117", "EmfGradientFill", "EmfSetLinkedUfis", "EmfSetTextJustification",
	"EmfColorMatchToTargetW", "EmfCreateColorSpaceW",
}

var emfPlusNames = [...]string{
	"EmfPlusRecordBase", "Header", "EndOfFile", "Comment", "GetDC",
	"MultiFormatStart", "MultiFormatSection", "MultiFormatEnd", "Object", "Clear",
	"FillRects", "DrawRects", "FillPolygon", "DrawLines", "FillEllipse",
	"DrawEllipse", "FillPie", "DrawPie", "DrawArc", "FillRegion",
	"FillPath", "DrawPath", "FillClosedCurve", "DrawClosedCurve", "DrawCurve",
	"DrawBeziers", "DrawImage", "DrawImagePoints", "DrawString", "SetRenderingOrigin",
	"SetAntiAliasMode", "SetTextRenderingHint", "SetTextContrast", "SetInterpolationMode", "SetPixelOffsetMode",
	"SetCompositingMode", "SetCompositingQuality", "Save", "Restore", "BeginContainer",
	"BeginContainerNoParams", "EndContainer", "SetWorldTransform", "ResetWorldTransform", "MultiplyWorldTransform",
	"TranslateWorldTransform", "ScaleWorldTransform", "RotateWorldTransform", "SetPageTransform", "ResetClip",
	"SetClipRect", "SetClipPath", "SetClipRegion", "OffsetClip", "DrawDriverString",
	"StrokeFillPath", "SerializableObject", "SetTSGraphics", "SetTSClip",
}
