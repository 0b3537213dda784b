package scene

import rl "github.com/gen2brain/raylib-go/raylib"

// Both programs take their transforms from uMVP/uModel rather than raylib's built-in matrices, so
// every draw uses exactly the matrices the frame computed. The projection maps depth to [0,1];
// the vertex stage widens it back to OpenGL's [-1,1].
const (
	phongVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 uMVP;
uniform mat4 uModel;
out vec3 fragPosition;
out vec2 fragTexCoord;
out vec3 fragNormal;
void main() {
  vec4 world = uModel * vec4(vertexPosition, 1.0);
  fragPosition = world.xyz;
  fragTexCoord = vertexTexCoord;
  fragNormal = mat3(uModel) * vertexNormal;
  vec4 clip = uMVP * vec4(vertexPosition, 1.0);
  gl_Position = vec4(clip.xy, 2.0 * clip.z - clip.w, clip.w);
}
`
	phongFS = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform sampler2D texture0;
uniform vec4 colDiffuse;
uniform vec4 uEye;
uniform vec4 uLight;
uniform vec4 uDiffuse;
uniform vec4 uSpecular;
uniform vec4 uParams;   // kd, ks, shininess, Le
uniform vec4 uAmbient;  // La, La, La, 0
out vec4 finalColor;
const float PI = 3.14159265359;
void main() {
  vec4 albedo = texture(texture0, fragTexCoord) * colDiffuse;
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(uLight.xyz - fragPosition);
  vec3 V = normalize(uEye.xyz - fragPosition);
  vec3 H = normalize(L + V);
  float NdotL = max(dot(N, L), 0.0);
  float kd = uParams.x;
  float ks = uParams.y;
  float n = uParams.z;
  float Le = uParams.w;
  vec3 diffuse = kd / PI * uDiffuse.rgb * albedo.rgb;
  vec3 specular = ks * (n + 8.0) / (8.0 * PI) * pow(max(dot(N, H), 0.0), n) * uSpecular.rgb;
  vec3 c = uAmbient.rgb * albedo.rgb + Le * (diffuse + specular) * NdotL;
  finalColor = vec4(c / (1.0 + c), albedo.a);
}
`
	shadowVS = `#version 330
in vec3 vertexPosition;
uniform mat4 uMVP;
void main() {
  vec4 clip = uMVP * vec4(vertexPosition, 1.0);
  gl_Position = vec4(clip.xy, 2.0 * clip.z - clip.w, clip.w);
}
`
	shadowFS = `#version 330
uniform vec4 uShadow;
out vec4 finalColor;
void main() {
  finalColor = uShadow;
}
`
)

// program is a loaded shader with its block uniform locations resolved.
type program struct {
	shader                                         rl.Shader
	mvp, model, eye, light, diffuse, specular, par int32
	ambient, shadow                                int32
}

func loadProgram(vs, fs string) (program, bool) {
	sh := rl.LoadShaderFromMemory(vs, fs)
	if !rl.IsShaderValid(sh) {
		return program{}, false
	}
	return program{
		shader:   sh,
		mvp:      rl.GetShaderLocation(sh, "uMVP"),
		model:    rl.GetShaderLocation(sh, "uModel"),
		eye:      rl.GetShaderLocation(sh, "uEye"),
		light:    rl.GetShaderLocation(sh, "uLight"),
		diffuse:  rl.GetShaderLocation(sh, "uDiffuse"),
		specular: rl.GetShaderLocation(sh, "uSpecular"),
		par:      rl.GetShaderLocation(sh, "uParams"),
		ambient:  rl.GetShaderLocation(sh, "uAmbient"),
		shadow:   rl.GetShaderLocation(sh, "uShadow"),
	}, true
}
