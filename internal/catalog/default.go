package catalog

import (
	"github.com/vk/predictgen/internal/sdl"
	"github.com/vk/predictgen/internal/vtl"
)

// Data source IDs.
const (
	RekognitionDataSource = "RekognitionDataSource"
	TranslateDataSource   = "TranslateDataSource"
	LambdaDataSource      = "LambdaDataSource"
)

const (
	templateVersion = "2018-05-29"
	amzJSON         = "application/x-amz-json-1.1"
)

// Default returns a frozen catalog with every supported action.
func Default() *Catalog {
	c := New()
	c.RegisterDataSource(DataSource{ID: RekognitionDataSource, Kind: HTTP, Service: "rekognition"})
	c.RegisterDataSource(DataSource{ID: TranslateDataSource, Kind: HTTP, Service: "translate"})
	c.RegisterDataSource(DataSource{ID: LambdaDataSource, Kind: Lambda})

	c.Register(identifyText())
	c.Register(identifyLabels())
	c.Register(identifyEntities())
	c.Register(translateText())
	c.Register(convertTextToSpeech())
	return c.Freeze()
}

func rekognitionRequest(action, target string, extra ...vtl.Field) vtl.Node {
	body := vtl.Obj{
		vtl.F("Image", vtl.Obj{
			vtl.F("S3Object", vtl.Obj{
				vtl.F("Bucket", vtl.Str("$bucketName")),
				vtl.F("Name", vtl.Str("$ctx.args.input."+action+".key")),
			}),
		}),
	}
	body = append(body, extra...)
	return httpRequest(body, "RekognitionService."+target)
}

func httpRequest(body vtl.Obj, target string) vtl.Obj {
	return vtl.Obj{
		vtl.F("version", vtl.Str(templateVersion)),
		vtl.F("method", vtl.Str("POST")),
		vtl.F("resourcePath", vtl.Str("/")),
		vtl.F("params", vtl.Obj{
			vtl.F("body", body),
			vtl.F("headers", vtl.Obj{
				vtl.F("Content-Type", vtl.Str(amzJSON)),
				vtl.F("X-Amz-Target", vtl.Str(target)),
			}),
		}),
	}
}

// httpResponse short-circuits on an upstream error, then on a non-200
// status, before running onSuccess.
func httpResponse(onSuccess vtl.Compound) vtl.Node {
	return vtl.Seq(
		vtl.If{Cond: vtl.Ref("ctx.error"), Then: vtl.Ref("util.error($ctx.error.message, $ctx.error.type)")},
		vtl.IfElse{
			Cond: vtl.Raw("$ctx.result.statusCode == 200"),
			Then: onSuccess,
			Else: vtl.Ref("util.error($ctx.result.body)"),
		},
	)
}

// joinedNames collapses the Name attribute of every element of collection
// into one ", " delimited string.
func joinedNames(collection vtl.Ref, item vtl.Ref, name string) vtl.Compound {
	return vtl.Seq(
		vtl.Set{Target: "names", Value: vtl.Str("")},
		vtl.Set{Target: "result", Value: vtl.Ref("util.parseJson($ctx.result.body)")},
		vtl.ForEach{Key: item, Collection: collection, Body: []vtl.Node{
			vtl.Set{Target: "names", Value: vtl.Str("$names$" + string(item) + "." + name + ", ")},
		}},
		vtl.ToJSON{Value: vtl.Ref(`names.replaceAll(", $", "")`)},
	)
}

var imageKey = []sdl.Field{{Name: "key", Type: "String", Required: true}}

func identifyText() Entry {
	return Entry{
		Action: "identifyText",
		Request: vtl.Seq(
			vtl.Set{Target: "bucketName", Value: vtl.Ref(`ctx.stash.get("s3Bucket")`)},
			rekognitionRequest("identifyText", "DetectText"),
		),
		Response: httpResponse(vtl.Seq(
			vtl.Set{Target: "results", Value: vtl.Ref("util.parseJson($ctx.result.body)")},
			vtl.Set{Target: "finalResult", Value: vtl.Str("")},
			vtl.ForEach{Key: "item", Collection: "results.TextDetections", Body: []vtl.Node{
				vtl.If{
					Cond: vtl.Raw(`$item.Type == "LINE"`),
					Then: vtl.Set{Target: "finalResult", Value: vtl.Str("$finalResult$item.DetectedText ")},
				},
			}},
			vtl.ToJSON{Value: vtl.Ref("finalResult.trim()")},
		)),
		Permissions:    []string{"rekognition:DetectText"},
		DataSource:     RekognitionDataSource,
		Inputs:         imageKey,
		ProducesResult: true,
	}
}

func identifyLabels() Entry {
	return Entry{
		Action: "identifyLabels",
		Request: vtl.Seq(
			vtl.Set{Target: "bucketName", Value: vtl.Ref(`ctx.stash.get("s3Bucket")`)},
			vtl.QuietRef(`ctx.stash.put("isList", true)`),
			rekognitionRequest("identifyLabels", "DetectLabels",
				vtl.F("MaxLabels", vtl.Int(10)),
				vtl.F("MinConfidence", vtl.Int(55)),
			),
		),
		Response:       httpResponse(joinedNames("result.Labels", "label", "Name")),
		Permissions:    []string{"rekognition:DetectLabels"},
		DataSource:     RekognitionDataSource,
		Inputs:         imageKey,
		ProducesResult: true,
	}
}

func identifyEntities() Entry {
	return Entry{
		Action: "identifyEntities",
		Request: vtl.Seq(
			vtl.Set{Target: "bucketName", Value: vtl.Ref(`ctx.stash.get("s3Bucket")`)},
			vtl.QuietRef(`ctx.stash.put("isList", true)`),
			rekognitionRequest("identifyEntities", "RecognizeCelebrities"),
		),
		Response:       httpResponse(joinedNames("result.CelebrityFaces", "face", "Name")),
		Permissions:    []string{"rekognition:RecognizeCelebrities"},
		DataSource:     RekognitionDataSource,
		Inputs:         imageKey,
		ProducesResult: true,
	}
}

func translateText() Entry {
	return Entry{
		Action: "translateText",
		Request: vtl.Seq(
			vtl.Set{Target: "text", Value: vtl.Ref("util.defaultIfNull($ctx.args.input.translateText.text, $ctx.prev.result)")},
			httpRequest(vtl.Obj{
				vtl.F("SourceLanguageCode", vtl.Str("$ctx.args.input.translateText.sourceLanguage")),
				vtl.F("TargetLanguageCode", vtl.Str("$ctx.args.input.translateText.targetLanguage")),
				vtl.F("Text", vtl.Str("$text")),
			}, "AWSShineFrontendService_20170701.TranslateText"),
		),
		Response: httpResponse(vtl.Seq(
			vtl.Set{Target: "result", Value: vtl.Ref("util.parseJson($ctx.result.body)")},
			vtl.ToJSON{Value: vtl.Ref("result.TranslatedText")},
		)),
		Permissions: []string{"translate:TranslateText"},
		DataSource:  TranslateDataSource,
		Inputs: []sdl.Field{
			{Name: "sourceLanguage", Type: "String", Required: true},
			{Name: "targetLanguage", Type: "String", Required: true},
			{Name: "text", Type: "String"},
		},
		ConsumesPrevious: true,
		ProducesResult:   true,
	}
}

func convertTextToSpeech() Entry {
	return Entry{
		Action: "convertTextToSpeech",
		Request: vtl.Seq(
			vtl.Set{Target: "bucketName", Value: vtl.Ref(`ctx.stash.get("s3Bucket")`)},
			vtl.QuietRef(`ctx.stash.put("isList", false)`),
			vtl.Set{Target: "text", Value: vtl.Ref("util.defaultIfNull($ctx.args.input.convertTextToSpeech.text, $ctx.prev.result)")},
			vtl.Obj{
				vtl.F("version", vtl.Str(templateVersion)),
				vtl.F("operation", vtl.Str("Invoke")),
				vtl.F("payload", vtl.ToJSON{Value: vtl.Obj{
					vtl.F("uuid", vtl.Str("$util.autoId()")),
					vtl.F("action", vtl.Str("convertTextToSpeech")),
					vtl.F("bucket", vtl.Str("$bucketName")),
					vtl.F("voiceID", vtl.Str("$ctx.args.input.convertTextToSpeech.voiceID")),
					vtl.F("text", vtl.Str("$text")),
				}}),
			},
		),
		Response: vtl.Seq(
			vtl.If{Cond: vtl.Ref("ctx.error"), Then: vtl.Ref("util.error($ctx.error.message, $ctx.error.type)")},
			vtl.ToJSON{Value: vtl.Ref("ctx.result.url")},
		),
		DataSource: LambdaDataSource,
		Inputs: []sdl.Field{
			{Name: "voiceID", Type: "String", Required: true},
			{Name: "text", Type: "String"},
		},
		ConsumesPrevious: true,
		InvokesFunction:  true,
	}
}
