package shader

import (
	"fmt"
	"strings"
)

// Built-in shader names. Paths with this prefix never touch the disk.
const (
	BuiltinPrefix = "builtin:"
	TerrainVertex = BuiltinPrefix + "terrain.vert"
	TerrainFrag   = BuiltinPrefix + "terrain.frag"
)

// MaxLights is the light array size compiled into the terrain fragment
// shader.
const MaxLights = 4

const terrainVertexSrc = `#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aTexCoord;
layout (location = 2) in vec3 aNormal;

layout (std140) uniform VertexBlock {
	mat4 model;
	mat4 view;
	mat4 proj;
	mat4 normalMatrix;
} ubo;

out vec3 vWorldPos;
out vec2 vTexCoord;
out vec3 vNormal;

void main() {
	vec4 world = ubo.model * vec4(aPos, 1.0);
	vWorldPos = world.xyz;
	vTexCoord = aTexCoord;
	vNormal = mat3(ubo.normalMatrix) * aNormal;
	gl_Position = ubo.proj * ubo.view * world;
}
`

const terrainFragmentSrc = `#version 410 core

#define MAX_LIGHTS %d
#define DIRECTIONAL 1
#define POINT 2
#define SPOT 3

struct Light {
	vec4 posType;
	vec4 direction;
	vec4 ambient;
	vec4 diffuse;
	vec4 specular;
	vec4 attenuation;
	vec4 cutOff;
};

layout (std140) uniform FragmentBlock {
	vec4 camPos;
	vec4 time;
	vec4 lightCount;
	Light lights[MAX_LIGHTS];
} ubo;

uniform sampler2D texture0;

in vec3 vWorldPos;
in vec2 vTexCoord;
in vec3 vNormal;

out vec4 FragColor;

vec3 shade(Light l, vec3 albedo, vec3 n, vec3 toCam) {
	int type = int(l.posType.w + 0.5);
	vec3 toLight;
	float atten = 1.0;
	if (type == DIRECTIONAL) {
		toLight = normalize(-l.direction.xyz);
	} else {
		vec3 d = l.posType.xyz - vWorldPos;
		float dist = length(d);
		toLight = d / dist;
		atten = 1.0 / (l.attenuation.x + l.attenuation.y * dist + l.attenuation.z * dist * dist);
	}
	float cone = 1.0;
	if (type == SPOT) {
		float theta = dot(toLight, normalize(-l.direction.xyz));
		float eps = max(l.cutOff.x - l.cutOff.y, 1e-4);
		cone = clamp((theta - l.cutOff.y) / eps, 0.0, 1.0);
	}
	float diff = max(dot(n, toLight), 0.0);
	vec3 h = normalize(toLight + toCam);
	float spec = pow(max(dot(n, h), 0.0), 32.0);
	vec3 c = l.ambient.rgb * albedo
		+ cone * (l.diffuse.rgb * diff * albedo + l.specular.rgb * spec);
	return c * atten;
}

void main() {
	vec3 n = normalize(vNormal);
	vec3 toCam = normalize(ubo.camPos.xyz - vWorldPos);
	vec3 albedo = texture(texture0, vTexCoord).rgb;

	int count = min(int(ubo.lightCount.x + 0.5), MAX_LIGHTS);
	vec3 color = vec3(0.0);
	for (int i = 0; i < count; i++) {
		color += shade(ubo.lights[i], albedo, n, toCam);
	}
	if (count == 0) {
		color = albedo * max(n.z, 0.2);
	}
	FragColor = vec4(color, 1.0);
}
`

// Builtin returns the source of a built-in shader.
func Builtin(name string) (string, bool) {
	switch name {
	case TerrainVertex:
		return terrainVertexSrc, true
	case TerrainFrag:
		return fmt.Sprintf(terrainFragmentSrc, MaxLights), true
	}
	return "", false
}

// IsBuiltin reports whether name refers to a built-in shader.
func IsBuiltin(name string) bool {
	return strings.HasPrefix(name, BuiltinPrefix)
}
